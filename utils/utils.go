package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/weatherbackend/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", common.BadRequest("password must be at most 72 bytes")
	}
	return string(bytes), err
}

func CheckPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// NormalizeUsername trims and NFC-normalizes a username so visually equal
// names map to one account.
func NormalizeUsername(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func ParseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Pagination reads page and size from the query string. page starts at 1
// and size is clamped to [1, max]. page is capped so the offset
// (page-1)*size fits in an int.
func Pagination(c *gin.Context, defSize, max int) (page, size int) {
	page = ParseIntDefault(c.Query("page"), 1)
	size = ParseIntDefault(c.Query("size"), defSize)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defSize
	}
	if size > max {
		size = max
	}
	if limit := math.MaxInt/size + 1; page > limit {
		page = limit
	}
	return page, size
}

// RespondError writes err as {"error": kind, "message": detail}.
func RespondError(c *gin.Context, err error) {
	c.JSON(common.StatusCode(err), errorBody(err))
}

// AbortWithError is RespondError for middleware.
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(common.StatusCode(err), errorBody(err))
}

func errorBody(err error) gin.H {
	return gin.H{
		"error":   common.KindOf(err).Error(),
		"message": common.Message(err),
	}
}
