package schema

import (
	"fmt"

	"github.com/bridgesearch/bridge/errors"
)

func bridgeSerializationErrorf(format string, args ...interface{}) error {
	return errors.E(errors.SerializationError, fmt.Sprintf(format, args...))
}
