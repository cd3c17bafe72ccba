// Package storage implements the service ports on top of gorm.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-workhours/internal/services"
	"gorm.io/gorm"
)

// translate maps gorm errors onto service sentinels. Requires gorm.Config.TranslateError.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return services.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", services.ErrConflict, err)
	default:
		return err
	}
}

// likeEscaper neutralizes LIKE wildcards in user input.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
