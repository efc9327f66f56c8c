package models

import (
	"context"
	"time"

	"github.com/automate/invitation-server/invitation-service/models/userdata"
	"github.com/uptrace/bun"
)

func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*userdata.User)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}

	_, err := db.NewCreateTable().
		Model((*userdata.Invitation)(nil)).
		IfNotExists().
		ForeignKey(`("sender_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	return err
}

func InitModelRegistrations(db *bun.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	return CreateSchema(ctx, db)
}
