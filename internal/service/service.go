package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/axatsa/Sadaka-bot/internal/config"
	"github.com/axatsa/Sadaka-bot/internal/models"
	"github.com/axatsa/Sadaka-bot/internal/repository"
	"github.com/axatsa/Sadaka-bot/internal/validate"
)

// Service implements the bot's business operations on top of the repository.
// It never talks to Telegram: the handlers and the reminder scheduler render
// what it returns.
type Service struct {
	repo *repository.Repository
	now  func() time.Time
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RegisterUser creates the user on first contact. Existing users are left
// untouched.
func (s *Service) RegisterUser(ctx context.Context, userID int64, username, firstName string) error {
	return s.repo.CreateUser(ctx, userID, username, firstName)
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.repo.GetUser(ctx, userID)
}

func (s *Service) SetLanguage(ctx context.Context, userID int64, language string) error {
	return s.repo.UpdateUserLanguage(ctx, userID, language)
}

// PlanProjection is what accepting a daily plan projects forward: the plan
// extrapolated over a 30-day marathon and its share of the active goal.
type PlanProjection struct {
	DailyPlan           int64
	TotalProjected      int64
	ContributionPercent float64
}

// SetDailyPlan validates and stores the user's daily plan and returns the
// projection shown in the confirmation message.
func (s *Service) SetDailyPlan(ctx context.Context, userID int64, text string) (*PlanProjection, error) {
	plan, err := validate.DailyPlan(text)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUserDailyPlan(ctx, userID, plan); err != nil {
		return nil, err
	}

	proj := &PlanProjection{
		DailyPlan:      plan,
		TotalProjected: plan * marathonDays,
	}
	marathon, err := s.repo.ActiveMarathon(ctx)
	if err != nil {
		return nil, err
	}
	if marathon != nil && marathon.GoalAmount > 0 {
		proj.ContributionPercent = GoalContributionPercent(proj.TotalProjected, marathon.GoalAmount)
	}
	return proj, nil
}

// SetDisplayName validates and stores the display name or pseudonym.
func (s *Service) SetDisplayName(ctx context.Context, userID int64, name string, anonymous bool) error {
	clean, err := validate.DisplayName(name)
	if err != nil {
		return err
	}
	return s.repo.UpdateUserDisplayName(ctx, userID, clean, anonymous)
}

// CompleteOnboarding moves the user into the marathon state and joins the
// active marathon when one is running. Returns whether a marathon was joined.
func (s *Service) CompleteOnboarding(ctx context.Context, userID int64) (bool, error) {
	if err := s.repo.UpdateUserState(ctx, userID, models.StateInMarathon); err != nil {
		return false, err
	}
	marathon, err := s.repo.ActiveMarathon(ctx)
	if err != nil {
		return false, err
	}
	if marathon == nil {
		return false, nil
	}
	if err := s.repo.JoinMarathon(ctx, userID, marathon.ID); err != nil {
		return false, err
	}
	return true, nil
}

// Check-in

// DayStats is what a user sees right after marking a day.
type DayStats struct {
	Date         time.Time
	Completed    bool
	Amount       int64
	TotalAmount  int64   // all completed amounts for the day
	Participants int     // distinct users completed that day
	DayProgress  float64 // day total vs the daily slice of the goal
}

// marathonDays is the fixed day count used to project plans and slice the
// goal into daily targets, independent of the actual marathon duration.
const marathonDays = 30

// CheckIn records a completed day with the given amount and returns the
// same-day stats. The ledger write and the marathon total recompute are one
// transaction inside the repository.
func (s *Service) CheckIn(ctx context.Context, userID int64, date time.Time, amount int64) (*DayStats, error) {
	if amount <= 0 {
		return nil, &validate.Error{Key: "invalid_number"}
	}
	marathon, err := s.repo.ActiveMarathon(ctx)
	if err != nil {
		return nil, err
	}
	if marathon == nil {
		return nil, models.ErrNoActiveMarathon
	}
	if err := s.repo.MarkDayCompleted(ctx, userID, marathon.ID, date, amount); err != nil {
		return nil, err
	}
	return s.dayStats(ctx, marathon, date, true, amount)
}

// UndoCheckIn reverses a completion for the day. The entry stays in the
// ledger with a zero amount so the day still counts as acted on.
func (s *Service) UndoCheckIn(ctx context.Context, userID int64, date time.Time) (*DayStats, error) {
	marathon, err := s.repo.ActiveMarathon(ctx)
	if err != nil {
		return nil, err
	}
	if marathon == nil {
		return nil, models.ErrNoActiveMarathon
	}
	if err := s.repo.MarkDayNotCompleted(ctx, userID, marathon.ID, date); err != nil {
		return nil, err
	}
	return s.dayStats(ctx, marathon, date, false, 0)
}

func (s *Service) dayStats(ctx context.Context, marathon *models.Marathon, date time.Time, completed bool, amount int64) (*DayStats, error) {
	daily, err := s.repo.DailyGlobalStats(ctx, marathon.ID, date)
	if err != nil {
		return nil, err
	}
	stats := &DayStats{
		Date:         date,
		Completed:    completed,
		Amount:       amount,
		TotalAmount:  daily.TotalAmount,
		Participants: daily.ParticipantsCount,
	}
	if marathon.GoalAmount > 0 {
		dailyGoal := float64(marathon.GoalAmount) / marathonDays
		stats.DayProgress = round1(float64(daily.TotalAmount) / dailyGoal * 100)
	}
	return stats, nil
}

// Marathon view

// MarathonView is everything the stats screen shows for one user.
type MarathonView struct {
	Marathon                models.Marathon
	Stats                   models.MarathonStats
	UserStats               models.UserMarathonStats
	Rank                    int
	DaysElapsed             int
	MissedDays              int
	PlanAdherencePercent    float64
	GoalContributionPercent float64
}

// MarathonView assembles campaign stats, the user's aggregates, their rank
// and the projected percentages. Read-only; everything is recomputed from
// the ledger on each call.
func (s *Service) MarathonView(ctx context.Context, userID int64) (*MarathonView, error) {
	marathon, err := s.repo.ActiveMarathon(ctx)
	if err != nil {
		return nil, err
	}
	if marathon == nil {
		return nil, models.ErrNoActiveMarathon
	}

	stats, err := s.repo.MarathonStats(ctx, marathon.ID)
	if err != nil {
		return nil, err
	}
	userStats, err := s.repo.UserMarathonStats(ctx, userID, marathon.ID)
	if err != nil {
		return nil, err
	}
	rank, _, err := s.repo.MarathonRanking(ctx, userID, marathon.ID)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &MarathonView{
		Marathon:    *marathon,
		Stats:       stats,
		UserStats:   userStats,
		Rank:        rank,
		DaysElapsed: DaysElapsed(marathon.StartDate, marathon.EndDate, s.now()),
	}
	view.MissedDays = view.DaysElapsed - userStats.CompletedDays
	if view.MissedDays < 0 {
		view.MissedDays = 0
	}
	if user != nil {
		view.PlanAdherencePercent = PlanAdherencePercent(userStats.TotalContribution, user.DailyPlan, view.DaysElapsed)
	}
	view.GoalContributionPercent = GoalContributionPercent(userStats.TotalContribution, marathon.GoalAmount)
	return view, nil
}

// MonthGrid maps day-of-month to completion status for the active marathon.
// Days the user never acted on are absent.
func (s *Service) MonthGrid(ctx context.Context, userID int64, year int, month time.Month) (map[int]models.CompletionStatus, error) {
	marathon, err := s.repo.ActiveMarathon(ctx)
	if err != nil {
		return nil, err
	}
	if marathon == nil {
		return nil, models.ErrNoActiveMarathon
	}
	return s.repo.MonthCompletions(ctx, userID, marathon.ID, year, month)
}

// Administration

// StartMarathon creates and activates a new marathon. Any previously active
// marathon is deactivated in the same transaction, and already-onboarded
// users are enrolled. Returns the created marathon for the broadcast.
func (s *Service) StartMarathon(ctx context.Context, goalAmount int64, startDate, endDate time.Time) (*models.Marathon, error) {
	if goalAmount <= 0 {
		return nil, &validate.Error{Key: "marathon_goal_too_small"}
	}
	if endDate.Before(startDate) {
		return nil, &validate.Error{Key: "invalid_number"}
	}
	if err := s.repo.CreateMarathon(ctx, goalAmount, startDate, endDate); err != nil {
		return nil, err
	}
	marathon, err := s.repo.ActiveMarathon(ctx)
	if err != nil {
		return nil, err
	}
	if marathon == nil {
		return nil, errors.New("marathon missing right after creation")
	}
	return marathon, nil
}

func (s *Service) ActiveMarathon(ctx context.Context) (*models.Marathon, error) {
	return s.repo.ActiveMarathon(ctx)
}

// MarathonOverview returns the active marathon with its campaign aggregate,
// for the admin panel.
func (s *Service) MarathonOverview(ctx context.Context) (*models.Marathon, models.MarathonStats, error) {
	marathon, err := s.repo.ActiveMarathon(ctx)
	if err != nil {
		return nil, models.MarathonStats{}, err
	}
	if marathon == nil {
		return nil, models.MarathonStats{}, models.ErrNoActiveMarathon
	}
	stats, err := s.repo.MarathonStats(ctx, marathon.ID)
	if err != nil {
		return nil, models.MarathonStats{}, err
	}
	return marathon, stats, nil
}

// GeneralStats is the admin project overview.
type GeneralStats struct {
	UsersCount     int
	DuasCount      int
	MarathonsCount int
	TotalDonations int64
}

func (s *Service) GeneralStats(ctx context.Context) (*GeneralStats, error) {
	users, err := s.repo.TotalUsersCount(ctx)
	if err != nil {
		return nil, err
	}
	duas, err := s.repo.TotalDuasCount(ctx)
	if err != nil {
		return nil, err
	}
	marathons, err := s.repo.TotalMarathonsCount(ctx)
	if err != nil {
		return nil, err
	}
	donations, err := s.repo.TotalDonationsAmount(ctx)
	if err != nil {
		return nil, err
	}
	return &GeneralStats{
		UsersCount:     users,
		DuasCount:      duas,
		MarathonsCount: marathons,
		TotalDonations: donations,
	}, nil
}

// Notifier queries

// AllUsers lists every known user.
func (s *Service) AllUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.AllUsers(ctx)
}

// ActiveParticipants lists participants of the active marathon; empty when
// no marathon is running.
func (s *Service) ActiveParticipants(ctx context.Context) ([]models.User, error) {
	marathon, err := s.repo.ActiveMarathon(ctx)
	if err != nil || marathon == nil {
		return nil, err
	}
	return s.repo.ActiveParticipants(ctx, marathon.ID)
}

// ParticipantsWithoutCompletion lists active-marathon participants with no
// ledger entry for the given day; empty when no marathon is running.
func (s *Service) ParticipantsWithoutCompletion(ctx context.Context, date time.Time) ([]models.User, error) {
	marathon, err := s.repo.ActiveMarathon(ctx)
	if err != nil || marathon == nil {
		return nil, err
	}
	return s.repo.ParticipantsWithoutCompletion(ctx, marathon.ID, date)
}

// Duas

// DuaGate is the quota check result shown before prompting for text.
type DuaGate struct {
	Allowed   bool
	Reason    models.QuotaReason // set when not allowed
	Warning   bool               // allowed, but the period is nearly full
	TotalUsed int
}

// CanSubmitDua evaluates the weekly quota for the user: the per-user limit
// first, then the global one, then the near-full warning band. Advisory
// only; AddDua re-checks inside the insert transaction.
func (s *Service) CanSubmitDua(ctx context.Context, userID int64) (DuaGate, error) {
	week := repository.CurrentJumaWeek(s.now())

	userCount, err := s.repo.CountUserDuas(ctx, userID, week)
	if err != nil {
		return DuaGate{}, err
	}
	if userCount >= config.DuaLimitPerUser {
		return DuaGate{Reason: models.QuotaUser}, nil
	}

	totalCount, err := s.repo.CountTotalDuas(ctx, week)
	if err != nil {
		return DuaGate{}, err
	}
	if totalCount >= config.DuaLimitTotal {
		return DuaGate{Reason: models.QuotaTotal, TotalUsed: totalCount}, nil
	}

	gate := DuaGate{Allowed: true, TotalUsed: totalCount}
	if totalCount >= config.DuaLimitTotal-config.DuaWarningWindow {
		gate.Warning = true
	}
	return gate, nil
}

// SubmitDua validates and records a dua against the current juma week.
// Returns *models.QuotaError when either limit is hit at insert time.
func (s *Service) SubmitDua(ctx context.Context, userID int64, text string, anonymous bool) error {
	clean, err := validate.DuaText(text)
	if err != nil {
		return err
	}

	senderName := "Anonim"
	if !anonymous {
		user, err := s.repo.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if user != nil {
			switch {
			case user.DisplayName != "":
				senderName = user.DisplayName
			case user.FirstName != "":
				senderName = user.FirstName
			}
		}
	}

	week := repository.CurrentJumaWeek(s.now())
	return s.repo.AddDua(ctx, userID, clean, senderName, anonymous, week,
		config.DuaLimitPerUser, config.DuaLimitTotal)
}
