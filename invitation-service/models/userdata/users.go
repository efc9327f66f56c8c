package userdata

import (
	"strconv"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	Id    int64  `bun:",pk,autoincrement" json:"id"`
	Name  string `bun:",notnull" json:"name"`
	Email string `bun:",notnull,unique" json:"email"`
}

func (user *User) ToMap() map[string]string {
	return map[string]string{
		"{{user.id}}":    strconv.FormatInt(user.Id, 10),
		"{{user.name}}":  user.Name,
		"{{user.email}}": user.Email,
	}
}
