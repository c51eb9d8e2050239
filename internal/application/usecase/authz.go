package usecase

import (
	"strings"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/errs"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/pkg/auth"
)

var stageRoles = map[vo.Stage]string{
	vo.StageAnalyst1:  auth.RoleAnalyst1,
	vo.StageAnalyst2:  auth.RoleAnalyst2,
	vo.StageAnalyst3:  auth.RoleAnalyst3,
	vo.StageServicing: auth.RoleServicing,
}

var reviewerRoles = []string{auth.RoleAnalyst1, auth.RoleAnalyst2, auth.RoleAnalyst3}

func hasAnyRole(actor dto.Actor, roles ...string) bool {
	for _, r := range roles {
		if actor.HasRole(r) {
			return true
		}
	}
	return false
}

func requireActor(op string, actor dto.Actor) error {
	if strings.TrimSpace(actor.ID) == "" {
		return errs.Permission(op, "an authenticated actor is required")
	}
	return nil
}

// requireRole passes when actor holds one of roles. Admins pass always.
func requireRole(op string, actor dto.Actor, roles ...string) error {
	if err := requireActor(op, actor); err != nil {
		return err
	}
	if actor.HasRole(auth.RoleAdmin) || hasAnyRole(actor, roles...) {
		return nil
	}
	return errs.Permission(op, "actor %s lacks role %s", actor.ID, strings.Join(roles, " or "))
}

func requireStage(op string, actor dto.Actor, stage vo.Stage) error {
	return requireRole(op, actor, stageRoles[stage])
}

// requireSubmitterOr passes for the application's submitter or any holder
// of roles.
func requireSubmitterOr(op string, actor dto.Actor, submitterID string, roles ...string) error {
	if err := requireActor(op, actor); err != nil {
		return err
	}
	if actor.ID == submitterID {
		return nil
	}
	return requireRole(op, actor, roles...)
}

func parseStage(op, raw string) (vo.Stage, error) {
	stage, err := vo.ParseStage(raw)
	if err != nil {
		return 0, errs.Validation(op, "%v", err)
	}
	return stage, nil
}

func parseAction(op, raw string) (vo.Action, error) {
	action, err := vo.NewAction(raw)
	if err != nil {
		return vo.Action{}, errs.Validation(op, "%v", err)
	}
	return action, nil
}
