package filesystem

import (
	"regexp"

	"filebox/internal/config"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var noSlashes = regexp.MustCompile(`^[^/\\]+$`)

// entryNameRules are shared by create and rename
func entryNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(1, config.MaxFileNameLength),
		validation.Match(noSlashes).Error("name cannot contain slashes"),
		validation.NotIn(".", "..").Error("name cannot be . or .."),
	}
}
