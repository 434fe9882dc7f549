package dto

import "github.com/princinho/weatherbackend/common"

type RegisterUserDTO struct {
	Username string
	Password string
	Admin    bool
}

func ParseRegisterUser(f Fields) (RegisterUserDTO, error) {
	if !f.Has("username") || f["password"] == "" {
		return RegisterUserDTO{}, common.BadRequest("Missing username or password")
	}
	admin, err := f.Bool("admin")
	if err != nil {
		return RegisterUserDTO{}, err
	}
	dto := RegisterUserDTO{Username: f.Get("username"), Password: f["password"]}
	if admin != nil {
		dto.Admin = *admin
	}
	return dto, nil
}
