package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	"github.com/yourusername/quizplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// AccessService проверяет право пользователя играть категорию по его тарифу
type AccessService struct {
	userRepo        repository.UserRepository
	planRepo        repository.SubscriptionPlanRepository
	categoryRepo    repository.CategoryRepository
	premiumPlanName string
}

// NewAccessService создает новый сервис проверки доступа.
// premiumPlanName — имя тарифа, открывающего все категории без перечисления.
func NewAccessService(
	userRepo repository.UserRepository,
	planRepo repository.SubscriptionPlanRepository,
	categoryRepo repository.CategoryRepository,
	premiumPlanName string,
) *AccessService {
	return &AccessService{
		userRepo:        userRepo,
		planRepo:        planRepo,
		categoryRepo:    categoryRepo,
		premiumPlanName: premiumPlanName,
	}
}

// CheckCategoryAccess проверяет, может ли пользователь играть категорию.
// Возвращает nil при наличии доступа, иначе ошибку ErrForbidden с причиной.
// Администраторам доступны все категории.
func (s *AccessService) CheckCategoryAccess(userID, categoryID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if user.IsAdmin() {
		return nil
	}

	if !user.SubscriptionActive || user.PlanID == nil {
		return fmt.Errorf("%w: an active subscription is required to play this category", apperrors.ErrForbidden)
	}

	plan, err := s.planRepo.GetByID(*user.PlanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// План удален после подписки — трактуем как отсутствие доступа
			return fmt.Errorf("%w: subscription plan no longer exists", apperrors.ErrForbidden)
		}
		return err
	}

	if expired(user, plan) {
		return fmt.Errorf("%w: subscription has expired", apperrors.ErrForbidden)
	}

	if strings.EqualFold(plan.Name, s.premiumPlanName) {
		return nil
	}

	if !plan.AllowsCategory(categoryID) {
		return fmt.Errorf("%w: category is not included in your plan", apperrors.ErrForbidden)
	}

	return nil
}

// expired проверяет истечение срока подписки.
// DurationDays == 0 означает бессрочную подписку.
func expired(user *entity.User, plan *entity.SubscriptionPlan) bool {
	if plan.DurationDays <= 0 || user.SubscribedAt == nil {
		return false
	}
	deadline := user.SubscribedAt.AddDate(0, 0, plan.DurationDays)
	return time.Now().After(deadline)
}

// AccessibleCategoryCount возвращает число категорий, доступных пользователю
// по его тарифу. Питает прогресс "сыграно из доступных" в сводке.
func (s *AccessService) AccessibleCategoryCount(userID uint) (int64, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0, err
	}

	if user.IsAdmin() {
		return s.categoryRepo.Count()
	}
	if !user.SubscriptionActive || user.PlanID == nil {
		return 0, nil
	}

	plan, err := s.planRepo.GetByID(*user.PlanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if expired(user, plan) {
		return 0, nil
	}
	if strings.EqualFold(plan.Name, s.premiumPlanName) {
		return s.categoryRepo.Count()
	}

	categories, err := s.categoryRepo.List()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, category := range categories {
		if plan.AllowsCategory(category.ID) {
			n++
		}
	}
	return n, nil
}

// Subscribe подключает пользователю тарифный план
func (s *AccessService) Subscribe(userID, planID uint) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetByID(planID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.PlanID = &plan.ID
	user.SubscriptionActive = true
	user.SubscribedAt = &now

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}
	return user, nil
}

// Unsubscribe отключает подписку пользователя, тариф остается в профиле
func (s *AccessService) Unsubscribe(userID uint) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	user.SubscriptionActive = false

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	return user, nil
}
