package utils

import (
	"crypto/subtle"
	"os"
	"strconv"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func UserIDMiddleware(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	claims := jwt.Get(ctx).(*AccessToken)

	userID := strconv.FormatUint(uint64(claims.ID), 10)

	if userID != id {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}
	ctx.Next()
}

// InternalAuthMiddleware guards routes called by trusted internal systems
// (payment callbacks, schedulers) rather than end users. Callers must send
// the shared secret from INTERNAL_API_TOKEN in X-Internal-Token; with no
// secret configured every request is refused.
func InternalAuthMiddleware(ctx iris.Context) {
	secret := os.Getenv("INTERNAL_API_TOKEN")
	token := ctx.GetHeader("X-Internal-Token")
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(token)) != 1 {
		ctx.StatusCode(iris.StatusUnauthorized)
		return
	}
	ctx.Next()
}
