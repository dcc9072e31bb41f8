package am

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/teranos/docwatcher/errors"
	"github.com/teranos/docwatcher/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.Mark(
				errors.Newf("%s failed %q check (got %v)", configKey(fe.Namespace()), fe.Tag(), fe.Value()),
				errors.ErrInvalidConfig)
		}
		return errors.Mark(err, errors.ErrInvalidConfig)
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return errors.Mark(errors.Wrap(err, "log.level"), errors.ErrInvalidConfig)
	}

	// A consume folder inside the watch tree would re-import its own copies forever
	watch, err := filepath.Abs(c.Watch.Folder)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "watch.folder"), errors.ErrInvalidConfig)
	}
	consume, err := filepath.Abs(c.Consume.Folder)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "consume.folder"), errors.ErrInvalidConfig)
	}
	if isWithin(consume, watch) {
		return errors.WithHint(
			errors.Mark(errors.Newf("consume.folder %s must not be inside watch.folder %s", consume, watch), errors.ErrInvalidConfig),
			"point PAPERLESS_CONSUME_FOLDER outside the watched tree")
	}

	if c.Stabilization.Checks > 0 && c.Stabilization.Interval <= 0 {
		return errors.Mark(
			errors.Newf("stabilization.interval must be > 0 when stabilization.checks is %d", c.Stabilization.Checks),
			errors.ErrInvalidConfig)
	}

	return nil
}

// isWithin reports whether path equals root or lies beneath it
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// configKey turns a validator namespace (Config.Server.Port) into a config key (server.port)
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
