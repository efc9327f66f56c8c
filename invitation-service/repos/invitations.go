package repos

import (
	"context"
	"fmt"

	"github.com/automate/invitation-server/invitation-service/models/userdata"
	"github.com/uptrace/bun"
)

type InvitationRepo struct {
	db *bun.DB
}

func NewInvitationRepo(db *bun.DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

func (c *InvitationRepo) AddInvitation(ctx context.Context, invitation *userdata.Invitation) error {
	_, err := ExtractTx(ctx, c.db).NewInsert().Model(invitation).
		Column("sender_id", "invited_email", "invited_name", "status").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add invitation: %w", translate(err))
	}

	return nil
}

func (c *InvitationRepo) GetInvitation(ctx context.Context, id int64) (*userdata.Invitation, error) {
	invitation := new(userdata.Invitation)

	err := ExtractTx(ctx, c.db).NewSelect().Model(invitation).Relation("Sender").Where(`"i"."id" = ?`, id).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", translate(err))
	}

	return invitation, nil
}

func (c *InvitationRepo) EmailInvited(ctx context.Context, email string) (bool, error) {
	exists, err := ExtractTx(ctx, c.db).NewSelect().Model((*userdata.Invitation)(nil)).Where(`"i"."invited_email" = ?`, email).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to look up invited email: %w", err)
	}

	return exists, nil
}

func (c *InvitationRepo) ListInvitations(ctx context.Context) ([]userdata.Invitation, error) {
	invitations := make([]userdata.Invitation, 0)

	err := ExtractTx(ctx, c.db).NewSelect().Model(&invitations).Relation("Sender").Order("i.id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	return invitations, nil
}

func (c *InvitationRepo) SetStatus(ctx context.Context, id int64, status bool) error {
	_, err := ExtractTx(ctx, c.db).NewUpdate().Model((*userdata.Invitation)(nil)).Set("status = ?", status).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	return nil
}

func (c *InvitationRepo) RemoveInvitation(ctx context.Context, id int64) error {
	_, err := ExtractTx(ctx, c.db).NewDelete().Model((*userdata.Invitation)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove invitation: %w", err)
	}

	return nil
}
