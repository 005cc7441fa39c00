package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/everafterhq/everafter-backend/internal/config"
	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/payments"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// Checkout session metadata keys and values used to route reconciliation.
const (
	metaKind           = "kind"
	kindContribution   = "registry_contribution"
	kindPlanUpgrade    = "plan_upgrade"
	metaContributionID = "contribution_id"
	metaOrderID        = "order_id"
	metaWeddingID      = "wedding_id"
)

var (
	ErrPayoutsNotEnabled = errors.New("wedding cannot accept payments yet")
	ErrNotUpgradeable    = errors.New("no paid upgrade available for this tier")
)

type PaymentService struct {
	db     *gorm.DB
	stripe payments.Client
	plans  *PlanService
	cfg    *config.Config
}

func NewPaymentService(db *gorm.DB, stripeClient payments.Client, planService *PlanService, cfg *config.Config) *PaymentService {
	return &PaymentService{db: db, stripe: stripeClient, plans: planService, cfg: cfg}
}

// ---------- Connected-account onboarding ----------

// StartOnboarding creates the wedding's connected account if needed and
// returns a fresh onboarding link.
func (s *PaymentService) StartOnboarding(ctx context.Context, wedding *models.Wedding, email string) (string, error) {
	accountID := ""
	if wedding.StripeAccountID != nil {
		accountID = *wedding.StripeAccountID
	}

	if accountID == "" {
		id, err := s.stripe.CreateConnectedAccount(ctx, email, wedding.ID.String())
		if err != nil {
			return "", err
		}
		if err := s.db.Model(wedding).Update("stripe_account_id", id).Error; err != nil {
			return "", fmt.Errorf("failed to store connected account id: %w", err)
		}
		wedding.StripeAccountID = &id
		accountID = id
	}

	returnURL := s.cfg.PublicBaseURL + "/api/weddings/" + wedding.ID.String() + "/payments/status"
	return s.stripe.CreateOnboardingLink(ctx, accountID, returnURL, returnURL)
}

// AccountStatus is the pull-based side of account reconciliation: it
// recomputes the stored flags from the live account and opportunistically
// corrects drift, so webhook loss only delays convergence.
func (s *PaymentService) AccountStatus(ctx context.Context, wedding *models.Wedding) (payoutsEnabled, onboardingCompleted, connected bool, err error) {
	if wedding.StripeAccountID == nil || *wedding.StripeAccountID == "" {
		return false, false, false, nil
	}

	acct, err := s.stripe.GetAccount(ctx, *wedding.StripeAccountID)
	if err != nil {
		return false, false, true, err
	}

	payoutsEnabled, onboardingCompleted = recomputeAccountStatus(acct.ChargesEnabled, acct.PayoutsEnabled, acct.DetailsSubmitted)
	if payoutsEnabled != wedding.PayoutsEnabled || onboardingCompleted != wedding.OnboardingCompleted {
		if err := s.applyAccountStatus(*wedding.StripeAccountID, payoutsEnabled, onboardingCompleted); err != nil {
			return payoutsEnabled, onboardingCompleted, true, err
		}
		wedding.PayoutsEnabled = payoutsEnabled
		wedding.OnboardingCompleted = onboardingCompleted
	}
	return payoutsEnabled, onboardingCompleted, true, nil
}

// recomputeAccountStatus derives the stored flags from the raw capability
// bits reported by Stripe.
func recomputeAccountStatus(chargesEnabled, accountPayoutsEnabled, detailsSubmitted bool) (payoutsEnabled, onboardingCompleted bool) {
	return chargesEnabled && accountPayoutsEnabled, detailsSubmitted
}

// applyAccountStatus is a full overwrite keyed by the external account id, so
// redelivering the same status is a no-op in effect.
func (s *PaymentService) applyAccountStatus(accountID string, payoutsEnabled, onboardingCompleted bool) error {
	res := s.db.Model(&models.Wedding{}).
		Where("stripe_account_id = ?", accountID).
		Updates(map[string]interface{}{
			"payouts_enabled":      payoutsEnabled,
			"onboarding_completed": onboardingCompleted,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to apply account status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		slog.Warn("account status for unknown connected account", "account_id", accountID)
	}
	return nil
}

// ---------- Checkout creation ----------

// CreateContributionCheckout opens a checkout session on the wedding's
// connected account and records the pending contribution keyed by session id.
func (s *PaymentService) CreateContributionCheckout(ctx context.Context, wedding *models.Wedding, item *models.RegistryItem, amountCents int64, name, email, message string) (*stripe.CheckoutSession, error) {
	if amountCents <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if wedding.StripeAccountID == nil || !wedding.PayoutsEnabled {
		return nil, ErrPayoutsNotEnabled
	}

	contributionID := uuid.New()
	siteURL := "https://" + wedding.Slug + "." + s.cfg.BaseDomain
	sess, err := s.stripe.CreateCheckoutSession(ctx, payments.CheckoutParams{
		Name:          "Gift: " + item.Name,
		AmountCents:   amountCents,
		Currency:      item.Currency,
		SuccessURL:    siteURL + "/registry?gift=thanks",
		CancelURL:     siteURL + "/registry",
		CustomerEmail: email,
		Metadata: map[string]string{
			metaKind:           kindContribution,
			metaContributionID: contributionID.String(),
			metaWeddingID:      wedding.ID.String(),
		},
		ConnectedAccount:    *wedding.StripeAccountID,
		ApplicationFeeCents: amountCents * 5 / 100,
	})
	if err != nil {
		return nil, err
	}

	contribution := models.Contribution{
		ID:               contributionID,
		WeddingID:        wedding.ID,
		RegistryItemID:   item.ID,
		ContributorName:  name,
		ContributorEmail: email,
		Message:          message,
		AmountCents:      amountCents,
		Currency:         item.Currency,
		Status:           models.PaymentPending,
		StripeSessionID:  sess.ID,
	}
	if err := s.db.Create(&contribution).Error; err != nil {
		return nil, fmt.Errorf("failed to record pending contribution: %w", err)
	}
	return sess, nil
}

// CreatePlanCheckout opens a platform-account checkout session for a plan
// upgrade and records the pending order.
func (s *PaymentService) CreatePlanCheckout(ctx context.Context, wedding *models.Wedding, tier models.PlanTier, email string) (*stripe.CheckoutSession, error) {
	var amount int64
	switch tier {
	case models.TierPremium:
		amount = s.cfg.PremiumPriceCents
	case models.TierDeluxe:
		amount = s.cfg.DeluxePriceCents
	default:
		return nil, ErrNotUpgradeable
	}

	orderID := uuid.New()
	sess, err := s.stripe.CreateCheckoutSession(ctx, payments.CheckoutParams{
		Name:          "EverAfter " + string(tier) + " plan",
		AmountCents:   amount,
		Currency:      "usd",
		SuccessURL:    s.cfg.PublicBaseURL + "/upgrade/success",
		CancelURL:     s.cfg.UpgradeURL,
		CustomerEmail: email,
		Metadata: map[string]string{
			metaKind:      kindPlanUpgrade,
			metaOrderID:   orderID.String(),
			metaWeddingID: wedding.ID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	order := models.PlanOrder{
		ID:              orderID,
		WeddingID:       wedding.ID,
		Tier:            tier,
		AmountCents:     amount,
		Status:          models.PaymentPending,
		StripeSessionID: sess.ID,
	}
	if err := s.db.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to record pending plan order: %w", err)
	}
	return sess, nil
}

// ---------- Webhook reconciliation ----------

// HandleCheckoutCompleted applies a completed checkout session exactly once.
// Unknown session references are logged and acknowledged so Stripe stops
// redelivering them; store failures propagate so Stripe retries.
func (s *PaymentService) HandleCheckoutCompleted(sess *stripe.CheckoutSession) error {
	switch sess.Metadata[metaKind] {
	case kindContribution:
		return s.completeContribution(sess)
	case kindPlanUpgrade:
		return s.completePlanOrder(sess)
	default:
		slog.Warn("checkout session with unknown kind", "session_id", sess.ID, "kind", sess.Metadata[metaKind])
		return nil
	}
}

// completeContribution flips the contribution to completed and increments the
// registry item total in one transaction. The status guard makes redelivery a
// no-op; the SQL-side increment keeps concurrent contributions from losing
// updates.
func (s *PaymentService) completeContribution(sess *stripe.CheckoutSession) error {
	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Contribution{}).
			Where("stripe_session_id = ? AND status = ?", sess.ID, models.PaymentPending).
			Updates(map[string]interface{}{
				"status":                   models.PaymentCompleted,
				"stripe_payment_intent_id": paymentIntentID,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to complete contribution: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Contribution{}).Where("stripe_session_id = ?", sess.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to look up contribution for session: %w", err)
			}
			if count == 0 {
				slog.Warn("checkout completed for unknown contribution", "session_id", sess.ID)
			} else {
				slog.Info("checkout completion redelivered, already applied", "session_id", sess.ID)
			}
			return nil
		}

		var contribution models.Contribution
		if err := tx.First(&contribution, "stripe_session_id = ?", sess.ID).Error; err != nil {
			return fmt.Errorf("failed to re-read contribution: %w", err)
		}

		return tx.Model(&models.RegistryItem{}).
			Where("id = ?", contribution.RegistryItemID).
			UpdateColumn("amount_contributed_cents",
				gorm.Expr("amount_contributed_cents + ?", contribution.AmountCents)).Error
	})
}

// completePlanOrder marks the order completed and applies the upgrade in one
// transaction. If the upgrade fails the status flip rolls back with it, so the
// order stays pending and Stripe's redelivery gets another full attempt.
func (s *PaymentService) completePlanOrder(sess *stripe.CheckoutSession) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PlanOrder{}).
			Where("stripe_session_id = ? AND status = ?", sess.ID, models.PaymentPending).
			Update("status", models.PaymentCompleted)
		if res.Error != nil {
			return fmt.Errorf("failed to complete plan order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			slog.Info("plan order completion redelivered or unknown", "session_id", sess.ID)
			return nil
		}

		var order models.PlanOrder
		if err := tx.First(&order, "stripe_session_id = ?", sess.ID).Error; err != nil {
			return fmt.Errorf("failed to re-read plan order: %w", err)
		}
		// uuid.Nil actor marks a system-initiated change in the audit trail.
		return s.plans.SetPlanTx(tx, order.WeddingID, order.Tier, uuid.Nil, "plan checkout completed", "", "stripe-webhook")
	})
}

// HandleCheckoutFailed marks a pending contribution failed.
func (s *PaymentService) HandleCheckoutFailed(sess *stripe.CheckoutSession) error {
	res := s.db.Model(&models.Contribution{}).
		Where("stripe_session_id = ? AND status = ?", sess.ID, models.PaymentPending).
		Update("status", models.PaymentFailed)
	if res.Error != nil {
		return fmt.Errorf("failed to mark contribution failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		slog.Warn("payment failure for unknown or settled session", "session_id", sess.ID)
	}
	return nil
}

// HandleChargeRefunded moves a completed contribution to refunded and backs
// the amount out of the registry item total, once.
func (s *PaymentService) HandleChargeRefunded(charge *stripe.Charge) error {
	if charge.PaymentIntent == nil {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Contribution{}).
			Where("stripe_payment_intent_id = ? AND status = ?", charge.PaymentIntent.ID, models.PaymentCompleted).
			Update("status", models.PaymentRefunded)
		if res.Error != nil {
			return fmt.Errorf("failed to mark contribution refunded: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			slog.Warn("refund for unknown or already-refunded contribution", "payment_intent", charge.PaymentIntent.ID)
			return nil
		}

		var contribution models.Contribution
		if err := tx.First(&contribution, "stripe_payment_intent_id = ?", charge.PaymentIntent.ID).Error; err != nil {
			return fmt.Errorf("failed to re-read refunded contribution: %w", err)
		}

		return tx.Model(&models.RegistryItem{}).
			Where("id = ?", contribution.RegistryItemID).
			UpdateColumn("amount_contributed_cents",
				gorm.Expr("amount_contributed_cents - ?", contribution.AmountCents)).Error
	})
}

// HandleAccountUpdated is the push-based side of account reconciliation.
func (s *PaymentService) HandleAccountUpdated(acct *stripe.Account) error {
	payoutsEnabled, onboardingCompleted := recomputeAccountStatus(acct.ChargesEnabled, acct.PayoutsEnabled, acct.DetailsSubmitted)
	return s.applyAccountStatus(acct.ID, payoutsEnabled, onboardingCompleted)
}

// HandleAccountDeauthorized disconnects a wedding whose connected account
// revoked the platform.
func (s *PaymentService) HandleAccountDeauthorized(accountID string) error {
	res := s.db.Model(&models.Wedding{}).
		Where("stripe_account_id = ?", accountID).
		Updates(map[string]interface{}{
			"stripe_account_id":    nil,
			"payouts_enabled":      false,
			"onboarding_completed": false,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to disconnect account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		slog.Warn("deauthorization for unknown connected account", "account_id", accountID)
	}
	return nil
}

// ListContributions returns a wedding's contributions, newest first.
func (s *PaymentService) ListContributions(weddingID uuid.UUID) ([]models.Contribution, error) {
	var contributions []models.Contribution
	err := s.db.Where("wedding_id = ?", weddingID).Order("created_at DESC").Find(&contributions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	return contributions, nil
}
