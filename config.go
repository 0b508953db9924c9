package consulboot

import (
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/pkg/errors"
)

// ExpandAndDecodeFile decodes the yaml file at path into dst after expanding
// environment variables. a missing file is not an error; dst is left untouched.
func ExpandAndDecodeFile(path string, dst interface{}) (err error) {
	var (
		raw []byte
	)

	if _, err = os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if raw, err = os.ReadFile(path); err != nil {
		return errors.WithStack(err)
	}

	return ExpandAndDecode(raw, dst)
}

// ExpandAndDecode expands environment variables within the raw content
// and then decodes it as yaml.
func ExpandAndDecode(raw []byte, dst interface{}) (err error) {
	return ExpandEnvironAndDecode(raw, dst, os.Getenv)
}

// ExpandEnvironAndDecode expansion using the provided mapping.
func ExpandEnvironAndDecode(raw []byte, dst interface{}, mapping func(string) string) (err error) {
	return errors.WithStack(yaml.Unmarshal([]byte(os.Expand(string(raw), mapping)), dst))
}
