package repos

import (
	"context"
	"fmt"

	"github.com/automate/invitation-server/invitation-service/models/userdata"
	"github.com/uptrace/bun"
)

type UserRepo struct {
	db *bun.DB
}

func NewUserRepo(db *bun.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (c *UserRepo) GetUser(ctx context.Context, id int64) (*userdata.User, error) {
	user := new(userdata.User)

	err := ExtractTx(ctx, c.db).NewSelect().Model(user).Where(`"u"."id" = ?`, id).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err))
	}

	return user, nil
}

func (c *UserRepo) EmailRegistered(ctx context.Context, email string) (bool, error) {
	exists, err := ExtractTx(ctx, c.db).NewSelect().Model((*userdata.User)(nil)).Where(`"u"."email" = ?`, email).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to look up user email: %w", err)
	}

	return exists, nil
}

func (c *UserRepo) AddUser(ctx context.Context, user *userdata.User) error {
	_, err := ExtractTx(ctx, c.db).NewInsert().Model(user).Column("name", "email").Returning("id").Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add user: %w", translate(err))
	}

	return nil
}
