// Package services связывает движок решений о доступе с хранилищем,
// блокировкой повторных действий, брокером событий и метриками.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/models"
	"github.com/magabrotheeeer/crimewatch/internal/storage"
)

var (
	// ErrStateRequired фильтр применяется без конкретного штата.
	ErrStateRequired = errors.New("a concrete state must be selected")
	// ErrActionRequired у действия нет идентификатора.
	ErrActionRequired = errors.New("action id is required")
	// ErrUnknownPlan тариф отсутствует в каталоге.
	ErrUnknownPlan = errors.New("unknown plan")
	// ErrPlanNotAllowed тариф предназначен для другой роли.
	ErrPlanNotAllowed = errors.New("plan is not available for this role")
)

// AllStates значение фильтра «все штаты», которое не считается применением.
const AllStates = "all"

// FilterOutcome результат применения фильтра.
type FilterOutcome struct {
	Access    access.Result
	Debited   bool
	Duplicate bool
	User      *models.User
}

// AccessService выполняет операции доступа над свежей записью пользователя.
type AccessService struct {
	repo      UserRepository
	lock      ActionLock
	publisher Publisher
	recorder  Recorder
	policy    access.Policy
	actionTTL time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewAccessService создает новый экземпляр AccessService.
// publisher и recorder могут быть nil.
func NewAccessService(
	repo UserRepository,
	lock ActionLock,
	publisher Publisher,
	recorder Recorder,
	policy access.Policy,
	actionTTL time.Duration,
	log *slog.Logger,
) *AccessService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &AccessService{
		repo:      repo,
		lock:      lock,
		publisher: publisher,
		recorder:  recorder,
		policy:    policy,
		actionTTL: actionTTL,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// EnsureUser читает запись субъекта и создаёт её с настройками роли, если записи нет.
func (s *AccessService) EnsureUser(ctx context.Context, p models.Principal) (*models.User, error) {
	const op = "services.AccessService.EnsureUser"

	u, err := s.repo.GetUser(ctx, p.UID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var region *string
	if p.Region != "" {
		r := p.Region
		region = &r
	}
	fresh := s.policy.NewUser(p.UID, p.Email, p.DisplayName, p.Role, region, s.now())
	err = s.repo.CreateUser(ctx, fresh)
	switch {
	case err == nil:
		s.log.Info("user record created", slog.String("user_uid", fresh.UID), slog.String("role", string(fresh.Role)))
		return &fresh, nil
	case errors.Is(err, storage.ErrUserExists):
		// запись создал параллельный запрос
		u, err = s.repo.GetUser(ctx, p.UID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return u, nil
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
}

// CheckAccess вычисляет решение о доступе по свежей записи.
func (s *AccessService) CheckAccess(ctx context.Context, p models.Principal) (*models.User, access.Result, error) {
	const op = "services.AccessService.CheckAccess"

	u, err := s.EnsureUser(ctx, p)
	if err != nil {
		return nil, access.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	res := access.Evaluate(u, s.now())
	s.recorder.ObserveDecision(res)
	return u, res, nil
}

// User возвращает запись по uid без создания.
func (s *AccessService) User(ctx context.Context, uid string) (*models.User, error) {
	const op = "services.AccessService.User"
	u, err := s.repo.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ApplyFilter обрабатывает явное применение фильтра по штату.
// При отказе в доступе ничего не списывается. Пробное использование
// списывается не более одного раза на actionID.
func (s *AccessService) ApplyFilter(ctx context.Context, p models.Principal, actionID, state string) (FilterOutcome, error) {
	const op = "services.AccessService.ApplyFilter"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", p.UID), slog.String("action_id", actionID))

	state = strings.TrimSpace(state)
	if state == "" || strings.EqualFold(state, AllStates) {
		return FilterOutcome{}, fmt.Errorf("%s: %w", op, ErrStateRequired)
	}
	if strings.TrimSpace(actionID) == "" {
		return FilterOutcome{}, fmt.Errorf("%s: %w", op, ErrActionRequired)
	}

	u, res, err := s.CheckAccess(ctx, p)
	if err != nil {
		return FilterOutcome{}, fmt.Errorf("%s: %w", op, err)
	}
	if !res.Valid {
		log.Info("filter denied", slog.String("reason", string(res.Reason)))
		return FilterOutcome{Access: res, User: u}, nil
	}

	now := s.now()
	out := FilterOutcome{Access: res}
	upd := s.policy.ConsumeTrial(*u, now)

	lockKey := fmt.Sprintf("trial-action:%s:%s", u.UID, actionID)
	if !upd.IsEmpty() {
		acquired, err := s.lock.Acquire(ctx, lockKey, s.actionTTL)
		if err != nil {
			return FilterOutcome{}, fmt.Errorf("%s: %w", op, err)
		}
		if acquired {
			out.Debited = true
		} else {
			log.Info("duplicate filter action, trial not debited")
			s.recorder.DuplicateAction()
			out.Duplicate = true
			upd = models.UserUpdate{}
		}
	}
	upd.Preferences = &models.Preferences{PreferredState: state}

	if err := s.repo.MergeUser(ctx, u.UID, upd); err != nil {
		if out.Debited {
			if lerr := s.lock.Invalidate(ctx, lockKey); lerr != nil {
				log.Warn("failed to release action lock", sl.Err(lerr))
			}
		}
		return FilterOutcome{}, fmt.Errorf("%s: %w", op, err)
	}

	updated := upd.Apply(*u)
	out.User = &updated

	if out.Debited {
		s.recorder.TrialDebited()
		eventType := models.EventTrialConsumed
		if updated.TrialsRemaining == 0 {
			eventType = models.EventTrialExhausted
		}
		event := models.NewEvent(eventType, updated, now)
		event.ExpiryDate = updated.TrialExpiryDate
		s.publish(ctx, log, event)
		log.Info("trial debited", slog.Int("trials_remaining", updated.TrialsRemaining))
	}
	return out, nil
}

// ActivateSubscription активирует тариф после подтверждённой оплаты.
func (s *AccessService) ActivateSubscription(ctx context.Context, p models.Principal, planID string) (*models.User, error) {
	const op = "services.AccessService.ActivateSubscription"

	plan, ok := models.LookupPlan(planID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrUnknownPlan)
	}
	u, err := s.EnsureUser(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plan.Role != u.Role {
		return nil, fmt.Errorf("%s: %w", op, ErrPlanNotAllowed)
	}

	now := s.now()
	upd := access.ActivateSubscription(plan.ID, plan.DurationMonths, now)
	if err := s.repo.MergeUser(ctx, u.UID, upd); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated := upd.Apply(*u)
	s.recorder.SubscriptionActivated(plan.ID)

	event := models.NewEvent(models.EventSubscriptionActivated, updated, now)
	event.Plan = plan.ID
	event.ExpiryDate = updated.SubscriptionExpiryDate
	s.publish(ctx, s.log.With(slog.String("op", op)), event)

	s.log.Info("subscription activated", slog.String("user_uid", u.UID), slog.String("plan", plan.ID))
	return &updated, nil
}

// GrantPremium выдаёт премиум-доступ пользователю targetUID от имени actor.
func (s *AccessService) GrantPremium(ctx context.Context, actor models.Principal, targetUID string) (*models.User, error) {
	const op = "services.AccessService.GrantPremium"
	u, err := s.changePremium(ctx, actor, targetUID, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// RevokePremium снимает премиум-доступ.
func (s *AccessService) RevokePremium(ctx context.Context, actor models.Principal, targetUID string) (*models.User, error) {
	const op = "services.AccessService.RevokePremium"
	u, err := s.changePremium(ctx, actor, targetUID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *AccessService) changePremium(ctx context.Context, actor models.Principal, targetUID string, grant bool) (*models.User, error) {
	actorRec, err := s.EnsureUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	var upd models.UserUpdate
	if grant {
		upd, err = access.GrantPremium(actorRec)
	} else {
		upd, err = access.RevokePremium(actorRec)
	}
	if err != nil {
		s.log.Warn("premium change rejected", slog.String("actor_uid", actor.UID), slog.String("target_uid", targetUID))
		return nil, err
	}

	target, err := s.repo.GetUser(ctx, targetUID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MergeUser(ctx, targetUID, upd); err != nil {
		return nil, err
	}
	updated := upd.Apply(*target)
	s.recorder.PremiumChanged(grant)

	event := models.NewEvent(models.EventPremiumChanged, updated, s.now())
	event.Premium = &grant
	s.publish(ctx, s.log, event)

	s.log.Info("premium changed",
		slog.String("actor_uid", actor.UID),
		slog.String("target_uid", targetUID),
		slog.Bool("premium", grant))
	return &updated, nil
}

// SetAccessEnabled включает или выключает доступ администратора targetUID.
func (s *AccessService) SetAccessEnabled(ctx context.Context, actor models.Principal, targetUID string, enabled bool) (*models.User, error) {
	const op = "services.AccessService.SetAccessEnabled"

	actorRec, err := s.EnsureUser(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	upd, err := access.SetAccessEnabled(actorRec, enabled)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	target, err := s.repo.GetUser(ctx, targetUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.MergeUser(ctx, targetUID, upd); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated := upd.Apply(*target)
	s.recorder.AccessToggled(enabled)
	s.log.Info("access flag changed",
		slog.String("actor_uid", actor.UID),
		slog.String("target_uid", targetUID),
		slog.Bool("enabled", enabled))
	return &updated, nil
}

// UpdatePreferences сохраняет настройки дашборда пользователя.
func (s *AccessService) UpdatePreferences(ctx context.Context, p models.Principal, prefs models.Preferences) (*models.User, error) {
	const op = "services.AccessService.UpdatePreferences"

	u, err := s.EnsureUser(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	upd := models.UserUpdate{Preferences: &prefs}
	if err := s.repo.MergeUser(ctx, u.UID, upd); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated := upd.Apply(*u)
	return &updated, nil
}

func (s *AccessService) publish(ctx context.Context, log *slog.Logger, e models.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		log.Warn("failed to publish event", slog.String("type", string(e.Type)), sl.Err(err))
	}
}
