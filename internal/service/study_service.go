package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"study-planner/internal/model"
	"study-planner/internal/repository"
)

// StudyDetail is a study with its memberships, most privileged first.
type StudyDetail struct {
	model.Study
	Members []model.UserStudy
}

// StudyService manages studies and their memberships.
type StudyService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewStudyService(store *repository.Store, log *zap.Logger) *StudyService {
	return &StudyService{store: store, log: log}
}

// CreateStudy creates the study with userID as its leader.
func (s *StudyService) CreateStudy(ctx context.Context, userID uint, name string) (*StudyDetail, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("study name is required")
	}

	var detail *StudyDetail
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.FindByID(ctx, userID); err != nil {
			return lookup("user", err)
		}
		study := model.Study{Name: name}
		if err := tx.Studies.Create(ctx, &study); err != nil {
			return err
		}
		leader := model.UserStudy{UserID: userID, StudyID: study.ID, MemberStatus: model.RankLeader}
		if err := tx.Studies.AddMember(ctx, &leader); err != nil {
			return err
		}
		var err error
		detail, err = loadStudy(ctx, tx, study.ID)
		return err
	})
	if err != nil {
		return nil, surface(s.log, "create study", err)
	}
	return detail, nil
}

// JoinStudy adds userID as a regular member.
func (s *StudyService) JoinStudy(ctx context.Context, userID, studyID uint) (*model.UserStudy, error) {
	var membership model.UserStudy
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.FindByID(ctx, userID); err != nil {
			return lookup("user", err)
		}
		if _, err := tx.Studies.FindByID(ctx, studyID); err != nil {
			return lookup("study", err)
		}
		_, err := tx.Studies.FindMembershipByStudyAndUser(ctx, studyID, userID)
		switch {
		case err == nil:
			return newError(CodeRedundant, "user %d already belongs to study %d", userID, studyID)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		membership = model.UserStudy{UserID: userID, StudyID: studyID, MemberStatus: model.RankMember}
		return tx.Studies.AddMember(ctx, &membership)
	})
	if err != nil {
		return nil, surface(s.log, "join study", err)
	}
	return &membership, nil
}

// SetMemberStatus changes a member's rank. Only the leader may do it, and the
// leader rank itself cannot be handed out this way.
func (s *StudyService) SetMemberStatus(ctx context.Context, actorID, studyID, targetUserID uint, rank int) (*model.UserStudy, error) {
	if rank < model.RankManager || rank > model.RankApplicant {
		return nil, invalid("rank %d is not assignable", rank)
	}

	var target *model.UserStudy
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		actor, err := tx.Studies.FindMembershipByStudyAndUser(ctx, studyID, actorID)
		if err != nil {
			return lookup("user study", err)
		}
		if actor.MemberStatus != model.RankLeader {
			return newError(CodeUnauthorized, "only the leader can change ranks")
		}
		target, err = tx.Studies.FindMembershipByStudyAndUser(ctx, studyID, targetUserID)
		if err != nil {
			return lookup("user study", err)
		}
		if target.ID == actor.ID {
			return invalid("the leader cannot change their own rank")
		}
		if target.MemberStatus == rank {
			return newError(CodeRedundant, "member already has rank %d", rank)
		}
		return tx.Studies.UpdateMemberStatus(ctx, target, rank)
	})
	if err != nil {
		return nil, surface(s.log, "set member status", err)
	}
	return target, nil
}

func (s *StudyService) GetStudy(ctx context.Context, studyID uint) (*StudyDetail, error) {
	detail, err := loadStudy(ctx, s.store, studyID)
	if err != nil {
		return nil, surface(s.log, "get study", err)
	}
	return detail, nil
}

func loadStudy(ctx context.Context, store *repository.Store, studyID uint) (*StudyDetail, error) {
	study, err := store.Studies.FindByID(ctx, studyID)
	if err != nil {
		return nil, lookup("study", err)
	}
	members, err := store.Studies.ListMembers(ctx, studyID)
	if err != nil {
		return nil, err
	}
	return &StudyDetail{Study: *study, Members: members}, nil
}
