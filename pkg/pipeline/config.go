package pipeline

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spritestyle/pkg/errors"
)

// ConfigFileName is the project file the CLI looks for in the working
// directory.
const ConfigFileName = "spritestyle.toml"

// LoadConfig reads pipeline options from a TOML project file. Unknown keys
// are rejected so typos do not silently fall back to defaults. Defaults are
// not applied; callers overlay flags first and then validate.
func LoadConfig(path string) (Options, error) {
	var opts Options
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
		}
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	md, err := toml.Decode(string(data), &opts)
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return opts, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	return opts, nil
}
