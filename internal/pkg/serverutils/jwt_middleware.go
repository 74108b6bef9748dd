package serverutils

import (
	"errors"
	"fmt"

	"freight-broker-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const actorLocal = "actor"

// JwtMiddleware authenticates Bearer HS256 tokens carrying account_id, role
// and optionally client_id. The raw role is normalized here and nowhere else.
// An empty secret rejects every request.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(CodeUnauthorized, "Authentication is not configured"))
		}

		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(CodeUnauthorized, "Missing token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(CodeUnauthorized, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(CodeUnauthorized, "Invalid claims"))
		}

		actor, err := ActorFromClaims(claims)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(CodeUnauthorized, err.Error()))
		}

		ctx.Locals(actorLocal, actor)
		return ctx.Next()
	}
}

func ActorFromClaims(claims jwt.MapClaims) (entity.Actor, error) {
	id, err := numericClaim(claims, "account_id")
	if err != nil {
		return entity.Actor{}, err
	}
	if id == nil {
		return entity.Actor{}, errors.New("missing account_id claim")
	}

	rawRole, _ := claims["role"].(string)
	role, err := entity.ParseRole(rawRole)
	if err != nil {
		return entity.Actor{}, err
	}

	clientId, err := numericClaim(claims, "client_id")
	if err != nil {
		return entity.Actor{}, err
	}

	return entity.Actor{Id: *id, Role: role, ClientId: clientId}, nil
}

func numericClaim(claims jwt.MapClaims, key string) (*int64, error) {
	raw, ok := claims[key]
	if !ok || raw == nil {
		return nil, nil
	}
	n, ok := raw.(float64)
	if !ok || n != float64(int64(n)) {
		return nil, fmt.Errorf("invalid %s claim", key)
	}
	v := int64(n)
	return &v, nil
}

// ActorFromCtx returns the actor set by JwtMiddleware.
func ActorFromCtx(ctx *fiber.Ctx) (entity.Actor, bool) {
	actor, ok := ctx.Locals(actorLocal).(entity.Actor)
	return actor, ok
}

// SignToken issues an HS256 token for actor. Used by brokerctl and tests.
func SignToken(secret string, accountId int64, role string, clientId *int64) (string, error) {
	claims := jwt.MapClaims{
		"account_id": accountId,
		"role":       role,
	}
	if clientId != nil {
		claims["client_id"] = *clientId
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
