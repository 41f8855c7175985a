package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"votemate/internal/apperr"
	"votemate/internal/models"
	"votemate/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const minPollOptions = 2

// Voter is one entry of a poll's voter ledger.
type Voter struct {
	UserID      string `json:"userId"`
	OptionIndex int    `json:"optionIndex"`
}

// PollView is the client-facing poll. Votes[i] counts Options[i].
type PollView struct {
	ID        string   `json:"_id"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	Votes     []int    `json:"votes"`
	CreatedBy *Creator `json:"createdBy"`
	Voters    []Voter  `json:"voters"`
	// VotedOptionIndex is set only in ListVotedPolls results.
	VotedOptionIndex *int      `json:"votedOptionIndex,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type PollService struct {
	db       *gorm.DB
	creators *CreatorCache
	now      func() time.Time
}

func NewPollService(db *gorm.DB, creators *CreatorCache) *PollService {
	return &PollService{db: db, creators: creators, now: time.Now}
}

// CreatePoll stores a new poll owned by the caller with all counts at zero.
func (s *PollService) CreatePoll(ctx context.Context, identity *Identity, question string, options []string) (*PollView, error) {
	question = utils.CleanText(question)
	options = utils.CleanTexts(options)

	var details []apperr.FieldError
	if question == "" {
		details = append(details, apperr.FieldError{Field: "question", Message: "question is required"})
	}
	if len(options) < minPollOptions {
		details = append(details, apperr.FieldError{Field: "options", Message: "A poll must have at least two options."})
	}
	for i, opt := range options {
		if opt == "" {
			details = append(details, apperr.FieldError{Field: fmt.Sprintf("options[%d]", i), Message: "option must not be empty"})
		}
	}
	if len(details) > 0 {
		return nil, apperr.Validation("Question and valid, non-empty options are required", details...)
	}

	now := s.now()
	poll := models.Poll{
		Question:  question,
		CreatedBy: identity.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&poll).Error; err != nil {
			return err
		}
		rows := make([]models.PollOption, len(options))
		for i, text := range options {
			rows[i] = models.PollOption{PollID: poll.ID, Position: i, Text: text}
		}
		poll.Options = rows
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, apperr.Internal("Failed to create poll", err)
	}

	creator := Creator{ID: identity.UserID, Username: identity.Username}
	s.creators.Remember(creator)
	slog.Info("poll created", "poll_id", poll.ID, "user_id", identity.UserID, "options", len(options))

	view := toView(&poll)
	view.CreatedBy = &creator
	return view, nil
}

// ListPolls returns every poll, newest first.
func (s *PollService) ListPolls(ctx context.Context) ([]*PollView, error) {
	var polls []models.Poll
	if err := s.withLedger(ctx).Order("created_at DESC").Find(&polls).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch all polls", err)
	}
	return s.views(ctx, polls)
}

// GetPoll returns a single poll.
func (s *PollService) GetPoll(ctx context.Context, pollID string) (*PollView, error) {
	id, err := parsePollID(pollID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// ListMyPolls returns the polls created by the caller, newest first.
func (s *PollService) ListMyPolls(ctx context.Context, identity *Identity) ([]*PollView, error) {
	var polls []models.Poll
	err := s.withLedger(ctx).
		Where("created_by = ?", identity.UserID).
		Order("created_at DESC").
		Find(&polls).Error
	if err != nil {
		return nil, apperr.Internal("Failed to fetch your polls", err)
	}
	return s.views(ctx, polls)
}

// ListVotedPolls returns the polls the caller voted on, most recently active first,
// each carrying the option the caller picked.
func (s *PollService) ListVotedPolls(ctx context.Context, identity *Identity) ([]*PollView, error) {
	voted := s.db.Model(&models.PollVoter{}).Select("poll_id").Where("user_id = ?", identity.UserID)

	var polls []models.Poll
	err := s.withLedger(ctx).
		Where("id IN (?)", voted).
		Order("updated_at DESC").
		Find(&polls).Error
	if err != nil {
		return nil, apperr.Internal("Failed to fetch voted polls", err)
	}

	views, err := s.views(ctx, polls)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		for _, voter := range v.Voters {
			if voter.UserID == identity.UserID {
				idx := voter.OptionIndex
				v.VotedOptionIndex = &idx
				break
			}
		}
	}
	return views, nil
}

// Vote records the caller's choice. The voter row and the count increment commit
// together, and the (poll, user) key rejects a second row even under concurrent requests.
func (s *PollService) Vote(ctx context.Context, identity *Identity, pollID string, optionIndex int) (*PollView, error) {
	id, err := parsePollID(pollID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var poll models.Poll
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&poll, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Poll not found")
			}
			return err
		}

		var optionCount int64
		if err := tx.Model(&models.PollOption{}).Where("poll_id = ?", poll.ID).Count(&optionCount).Error; err != nil {
			return err
		}
		if optionIndex < 0 || int64(optionIndex) >= optionCount {
			return apperr.Validation("Invalid option selected", apperr.FieldError{
				Field:   "optionIndex",
				Message: fmt.Sprintf("must be between 0 and %d", optionCount-1),
			})
		}

		voter := models.PollVoter{
			PollID:      poll.ID,
			UserID:      identity.UserID,
			OptionIndex: optionIndex,
			CreatedAt:   now,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&voter)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("You've already voted on this poll")
		}

		if err := tx.Model(&models.PollOption{}).
			Where("poll_id = ? AND position = ?", poll.ID, optionIndex).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Poll{}).Where("id = ?", poll.ID).UpdateColumn("updated_at", now).Error
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Internal("Server error while voting", err)
	}

	slog.Info("vote recorded", "poll_id", id, "user_id", identity.UserID, "option", optionIndex)
	return s.load(ctx, id)
}

// DeletePoll permanently removes a poll and its ledger. Only the creator may delete.
func (s *PollService) DeletePoll(ctx context.Context, identity *Identity, pollID string) error {
	id, err := parsePollID(pollID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var poll models.Poll
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&poll, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Poll not found")
			}
			return err
		}
		if poll.CreatedBy != identity.UserID {
			return apperr.Authorization("Unauthorized: You can only delete polls you created.")
		}

		if err := tx.Where("poll_id = ?", id).Delete(&models.PollVoter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", id).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&poll).Error
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return err
		}
		return apperr.Internal("Server error while deleting poll", err)
	}

	slog.Info("poll deleted", "poll_id", id, "user_id", identity.UserID)
	return nil
}

func (s *PollService) withLedger(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Voters", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

func (s *PollService) load(ctx context.Context, id string) (*PollView, error) {
	var poll models.Poll
	if err := s.withLedger(ctx).First(&poll, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Poll not found")
		}
		return nil, apperr.Internal("Failed to fetch poll", err)
	}
	views, err := s.views(ctx, []models.Poll{poll})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *PollService) views(ctx context.Context, polls []models.Poll) ([]*PollView, error) {
	ids := make([]string, len(polls))
	for i := range polls {
		ids[i] = polls[i].CreatedBy
	}
	creators, err := s.creators.Lookup(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch poll creators", err)
	}

	views := make([]*PollView, len(polls))
	for i := range polls {
		views[i] = toView(&polls[i])
		if creator, ok := creators[polls[i].CreatedBy]; ok {
			views[i].CreatedBy = &creator
		}
	}
	return views, nil
}

func toView(p *models.Poll) *PollView {
	v := &PollView{
		ID:        p.ID,
		Question:  p.Question,
		Options:   make([]string, len(p.Options)),
		Votes:     make([]int, len(p.Options)),
		Voters:    make([]Voter, len(p.Voters)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for i, opt := range p.Options {
		v.Options[i] = opt.Text
		v.Votes[i] = opt.Votes
	}
	for i, voter := range p.Voters {
		v.Voters[i] = Voter{UserID: voter.UserID, OptionIndex: voter.OptionIndex}
	}
	return v
}

func parsePollID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperr.Validation("Invalid poll ID format", apperr.FieldError{Field: "id", Message: "must be a UUID"})
	}
	return id.String(), nil
}
