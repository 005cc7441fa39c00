package services

import (
	"os"
	"sync"
	"testing"

	"github.com/everafterhq/everafter-backend/internal/config"
	"github.com/everafterhq/everafter-backend/internal/database"
	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/plans"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// Requires a reachable Postgres configured via the usual DB_* environment
// variables. Run with INTEGRATION_TEST=true.
func integrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("set INTEGRATION_TEST=true to run integration tests")
	}

	db, err := database.Connect(config.Load())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedContribution(t *testing.T, db *gorm.DB) (models.RegistryItem, models.Contribution) {
	t.Helper()

	wedding := models.Wedding{ID: uuid.New(), Slug: "itest-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&wedding).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&wedding) })

	item := models.RegistryItem{
		ID:        uuid.New(),
		WeddingID: wedding.ID,
		Name:      "Honeymoon fund",
		Currency:  "usd",
	}
	require.NoError(t, db.Create(&item).Error)
	t.Cleanup(func() { db.Delete(&item) })

	contribution := models.Contribution{
		ID:              uuid.New(),
		WeddingID:       wedding.ID,
		RegistryItemID:  item.ID,
		AmountCents:     5000,
		Currency:        "usd",
		Status:          models.PaymentPending,
		StripeSessionID: "cs_itest_" + uuid.NewString(),
	}
	require.NoError(t, db.Create(&contribution).Error)
	t.Cleanup(func() { db.Delete(&contribution) })

	return item, contribution
}

func TestCompleteContributionIdempotent(t *testing.T) {
	db := integrationDB(t)
	svc := NewPaymentService(db, nil, NewPlanService(db, plans.Default()), config.Load())

	item, contribution := seedContribution(t, db)

	sess := &stripe.CheckoutSession{
		ID:            contribution.StripeSessionID,
		Metadata:      map[string]string{"kind": "registry_contribution"},
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_itest_1"},
	}

	// Stripe redelivers webhooks; applying the same session three times must
	// increment the item total exactly once.
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.HandleCheckoutCompleted(sess))
	}

	var got models.RegistryItem
	require.NoError(t, db.First(&got, "id = ?", item.ID).Error)
	assert.Equal(t, int64(5000), got.AmountContributedCents)

	var updated models.Contribution
	require.NoError(t, db.First(&updated, "id = ?", contribution.ID).Error)
	assert.Equal(t, models.PaymentCompleted, updated.Status)
	assert.Equal(t, "pi_itest_1", updated.StripePaymentIntentID)
}

func TestRefundReversesContributionOnce(t *testing.T) {
	db := integrationDB(t)
	svc := NewPaymentService(db, nil, NewPlanService(db, plans.Default()), config.Load())

	item, contribution := seedContribution(t, db)

	sess := &stripe.CheckoutSession{
		ID:            contribution.StripeSessionID,
		Metadata:      map[string]string{"kind": "registry_contribution"},
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_itest_refund"},
	}
	require.NoError(t, svc.HandleCheckoutCompleted(sess))

	charge := &stripe.Charge{PaymentIntent: &stripe.PaymentIntent{ID: "pi_itest_refund"}}
	for i := 0; i < 2; i++ {
		require.NoError(t, svc.HandleChargeRefunded(charge))
	}

	var got models.RegistryItem
	require.NoError(t, db.First(&got, "id = ?", item.ID).Error)
	assert.Zero(t, got.AmountContributedCents)

	var updated models.Contribution
	require.NoError(t, db.First(&updated, "id = ?", contribution.ID).Error)
	assert.Equal(t, models.PaymentRefunded, updated.Status)
}

func TestHandleCheckoutCompletedUnknownSessionAcked(t *testing.T) {
	db := integrationDB(t)
	svc := NewPaymentService(db, nil, NewPlanService(db, plans.Default()), config.Load())

	sess := &stripe.CheckoutSession{
		ID:       "cs_itest_unknown_" + uuid.NewString(),
		Metadata: map[string]string{"kind": "registry_contribution"},
	}
	// Unknown sessions are acknowledged so Stripe stops redelivering.
	assert.NoError(t, svc.HandleCheckoutCompleted(sess))
}

func TestConcurrentContributionsSumExactly(t *testing.T) {
	db := integrationDB(t)
	svc := NewPaymentService(db, nil, NewPlanService(db, plans.Default()), config.Load())

	wedding := models.Wedding{ID: uuid.New(), Slug: "itest-conc-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&wedding).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&wedding) })

	item := models.RegistryItem{
		ID:        uuid.New(),
		WeddingID: wedding.ID,
		Name:      "Honeymoon fund",
		Currency:  "usd",
	}
	require.NoError(t, db.Create(&item).Error)
	t.Cleanup(func() { db.Delete(&item) })

	const n = 10
	const amount = int64(2500)

	sessions := make([]*stripe.CheckoutSession, n)
	for i := 0; i < n; i++ {
		contribution := models.Contribution{
			ID:              uuid.New(),
			WeddingID:       wedding.ID,
			RegistryItemID:  item.ID,
			AmountCents:     amount,
			Currency:        "usd",
			Status:          models.PaymentPending,
			StripeSessionID: "cs_itest_conc_" + uuid.NewString(),
		}
		require.NoError(t, db.Create(&contribution).Error)
		t.Cleanup(func() { db.Delete(&contribution) })

		sessions[i] = &stripe.CheckoutSession{
			ID:            contribution.StripeSessionID,
			Metadata:      map[string]string{"kind": "registry_contribution"},
			PaymentIntent: &stripe.PaymentIntent{ID: "pi_itest_conc_" + uuid.NewString()},
		}
	}

	// Distinct sessions completing at the same time must each count once.
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, sess := range sessions {
		wg.Add(1)
		go func(s *stripe.CheckoutSession) {
			defer wg.Done()
			errs <- svc.HandleCheckoutCompleted(s)
		}(sess)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var got models.RegistryItem
	require.NoError(t, db.First(&got, "id = ?", item.ID).Error)
	assert.Equal(t, int64(n)*amount, got.AmountContributedCents)
}

func TestCompletePlanOrderAtomicWithUpgrade(t *testing.T) {
	db := integrationDB(t)
	svc := NewPaymentService(db, nil, NewPlanService(db, plans.Default()), config.Load())

	wedding := models.Wedding{ID: uuid.New(), Slug: "itest-plan-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&wedding).Error)
	t.Cleanup(func() {
		db.Where("wedding_id = ?", wedding.ID).Delete(&models.PlanChangeLog{})
		db.Where("wedding_id = ?", wedding.ID).Delete(&models.PlanSubscription{})
		db.Unscoped().Delete(&wedding)
	})

	order := models.PlanOrder{
		ID:              uuid.New(),
		WeddingID:       wedding.ID,
		Tier:            "platinum", // not a valid tier; the upgrade will fail
		AmountCents:     4900,
		Status:          models.PaymentPending,
		StripeSessionID: "cs_itest_plan_" + uuid.NewString(),
	}
	require.NoError(t, db.Create(&order).Error)
	t.Cleanup(func() { db.Delete(&order) })

	sess := &stripe.CheckoutSession{
		ID:       order.StripeSessionID,
		Metadata: map[string]string{"kind": "plan_upgrade"},
	}

	// The failed upgrade must roll the status flip back with it, so the
	// order is still pending and a redelivery gets a full retry.
	require.Error(t, svc.HandleCheckoutCompleted(sess))

	var afterFailure models.PlanOrder
	require.NoError(t, db.First(&afterFailure, "id = ?", order.ID).Error)
	assert.Equal(t, models.PaymentPending, afterFailure.Status)

	plan, err := NewPlanService(db, plans.Default()).GetPlan(wedding.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, plan)

	// Once the order is repaired, the redelivery completes it and upgrades
	// the plan; a further redelivery is a no-op.
	require.NoError(t, db.Model(&order).Update("tier", models.TierPremium).Error)
	for i := 0; i < 2; i++ {
		require.NoError(t, svc.HandleCheckoutCompleted(sess))
	}

	var completed models.PlanOrder
	require.NoError(t, db.First(&completed, "id = ?", order.ID).Error)
	assert.Equal(t, models.PaymentCompleted, completed.Status)

	plan, err = NewPlanService(db, plans.Default()).GetPlan(wedding.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, plan)
}

func TestDeleteRemovesScopedRecords(t *testing.T) {
	db := integrationDB(t)
	svc := NewWeddingService(db)

	item, _ := seedContribution(t, db)

	var wedding models.Wedding
	require.NoError(t, db.First(&wedding, "id = ?", item.WeddingID).Error)

	group := models.GuestGroup{ID: uuid.New(), WeddingID: wedding.ID, Name: "Family"}
	require.NoError(t, db.Create(&group).Error)
	guest := models.Guest{ID: uuid.New(), WeddingID: wedding.ID, Name: "Ada", RSVPStatus: models.RSVPPending}
	require.NoError(t, db.Create(&guest).Error)

	require.NoError(t, svc.Delete(&wedding))

	for _, check := range []struct {
		name  string
		model interface{}
	}{
		{"guests", &models.Guest{}},
		{"guest groups", &models.GuestGroup{}},
		{"contributions", &models.Contribution{}},
		{"registry items", &models.RegistryItem{}},
	} {
		var count int64
		require.NoError(t, db.Model(check.model).Where("wedding_id = ?", wedding.ID).Count(&count).Error)
		assert.Zero(t, count, check.name)
	}
}

func principalWithID(id uuid.UUID) *tenant.Principal {
	return &tenant.Principal{ID: id}
}

func TestClaimIsExclusive(t *testing.T) {
	db := integrationDB(t)
	svc := NewWeddingService(db)

	wedding := models.Wedding{ID: uuid.New(), Slug: "itest-claim-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&wedding).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&wedding) })

	first := uuid.New()
	second := uuid.New()

	fresh := wedding
	require.NoError(t, svc.Claim(&fresh, principalWithID(first)))

	// Second claimant starts from a stale read that still sees no owner.
	stale := wedding
	stale.OwnerID = nil
	err := svc.Claim(&stale, principalWithID(second))
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	// Repeat claim by the winner is a no-op.
	repeat := wedding
	repeat.OwnerID = nil
	assert.NoError(t, svc.Claim(&repeat, principalWithID(first)))
}
