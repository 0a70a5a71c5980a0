package validators

import (
	"bitwise74/secure-file-ops/internal/model"
	"errors"
)

var ErrRoleInvalid = errors.New("Invalid role. Role must be either 'client' or 'ops'.")

func RoleValidator(r string) error {
	if r != model.RoleClient && r != model.RoleOps {
		return ErrRoleInvalid
	}

	return nil
}
