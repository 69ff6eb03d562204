package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/port"

	"go.uber.org/zap"
)

// Synthetic data pools for the demo dataset. All names are invented.
var (
	seedRegions = map[string][]string{
		"North America": {"USA", "Canada", "Mexico"},
		"Latin America": {"Brazil", "Argentina", "Colombia", "Chile"},
		"Europe":        {"Germany", "France", "UK", "Spain", "Poland"},
		"Asia Pacific":  {"Japan", "Australia", "India", "Vietnam"},
	}

	seedCompanyPrefixes = []string{
		"Summit", "Pacific", "Riverside", "Golden Gate", "Northern",
		"Tri-State", "Metro", "Coastal", "Pinnacle", "Evergreen",
		"Redstone", "Blue Harbor", "Cascade", "Silverline", "Atlas",
	}

	seedCompanySuffixes = map[domain.AccountType][]string{
		domain.AccountBottler:     {"Bottling Co", "Beverage Partners", "Bottlers Inc"},
		domain.AccountRetailer:    {"Retail Group", "Stores", "Trading Co"},
		domain.AccountDistributor: {"Distribution", "Logistics Group", "Wholesale"},
		domain.AccountQSR:         {"Burger House", "Quick Eats", "Diner Group"},
		domain.AccountCinema:      {"Cinemas", "Movieplex", "Theaters"},
		domain.AccountStadium:     {"Arena", "Stadium Authority", "Sports Park"},
		domain.AccountThemePark:   {"Adventure Park", "Funland", "World Resort"},
		domain.AccountGrocery:     {"Grocers", "Supermarkets", "Fresh Markets"},
		domain.AccountConvenience: {"Quick Stop", "Corner Stores", "Express Mart"},
	}

	seedFirstNames = []string{
		"James", "Maria", "Wei", "Priya", "Carlos", "Anna", "Tomas",
		"Yuki", "Fatima", "Lucas", "Emma", "Diego", "Sofia", "Noah", "Ines",
	}
	seedLastNames = []string{
		"Smith", "Garcia", "Chen", "Patel", "Silva", "Müller", "Novak",
		"Tanaka", "Hassan", "Costa", "Johnson", "Rossi", "Kim", "Dubois",
	}
	seedTitles = []string{
		"VP of Procurement", "Operations Director", "Category Manager",
		"Head of Food & Beverage", "Purchasing Manager", "CEO", "COO",
	}

	seedOppTemplates = []string{
		"Freestyle machine rollout", "Annual supply renewal",
		"Zero Sugar line expansion", "Stadium pouring rights",
		"Summer promotion bundle", "Premium water placement",
	}
	seedSubjects = []string{
		"Quarterly business review", "Pricing discussion",
		"Machine maintenance follow-up", "New product tasting",
		"Contract renewal terms", "Delivery schedule change",
	}
)

// Seeder populates the store with a synthetic demo dataset. It goes through
// CRMService so every generated entity passes the same validation as API
// writes.
type Seeder struct {
	crm    *CRMService
	logger *zap.Logger
	rng    *rand.Rand
}

// NewSeeder creates a seeder. A fixed seed keeps demo restarts looking
// the same.
func NewSeeder(crm *CRMService, logger *zap.Logger) *Seeder {
	return &Seeder{crm: crm, logger: logger, rng: rand.New(rand.NewSource(42))}
}

// SeedIfEmpty generates the demo dataset only when no accounts exist yet.
func (s *Seeder) SeedIfEmpty(ctx context.Context, accounts int) error {
	existing, err := s.crm.ListAccounts(ctx, port.AccountFilter{Limit: 1}, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Info("store already populated, skipping seed")
		return nil
	}
	return s.Seed(ctx, accounts)
}

// Seed generates the given number of accounts, each with contacts,
// opportunities and a communication history.
func (s *Seeder) Seed(ctx context.Context, accounts int) error {
	start := time.Now()
	for i := 0; i < accounts; i++ {
		if err := s.seedAccount(ctx); err != nil {
			return fmt.Errorf("seeding account %d: %w", i, err)
		}
	}
	s.logger.Info("demo dataset seeded",
		zap.Int("accounts", accounts),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (s *Seeder) seedAccount(ctx context.Context) error {
	accountType := domain.AccountTypes[s.rng.Intn(len(domain.AccountTypes))]
	region := s.pickRegion()
	country := s.pick(seedRegions[region])
	created := time.Now().UTC().AddDate(0, 0, -s.rng.Intn(720))

	a := &domain.Account{
		Name:             s.companyName(accountType),
		AccountType:      accountType,
		Region:           region,
		Country:          country,
		AnnualRevenue:    float64(s.rng.Intn(49_500)+500) * 1000,
		EmployeeCount:    s.rng.Intn(9950) + 50,
		CreatedDate:      created,
		LastActivityDate: created.AddDate(0, 0, s.rng.Intn(60)),
		HealthScore:      round2(20 + s.rng.Float64()*80),
		ChurnRiskScore:   round2(s.rng.Float64() * 100),
		LifetimeValue:    float64(s.rng.Intn(20_000)) * 1000,
		CurrentProducts:  s.pickProducts(),
		CreditRating:     s.pick([]string{"AAA", "AA", "A", "BBB", "BB"}),
		PaymentTerms:     s.pick([]string{"net_30", "net_45", "net_60"}),
		DiscountTier:     s.pick([]string{"standard", "silver", "gold", "platinum"}),
	}
	// Roughly a third of accounts run Freestyle machines.
	if s.rng.Intn(3) == 0 {
		machines := s.rng.Intn(50) + 1
		pours := round2(80 + s.rng.Float64()*400)
		uptime := round2(90 + s.rng.Float64()*10)
		a.FreestyleMachines = &machines
		a.AvgDailyPours = &pours
		a.MachineUptimePct = &uptime
	}
	lat := round2(-60 + s.rng.Float64()*120)
	lng := round2(-180 + s.rng.Float64()*360)
	a.Latitude = &lat
	a.Longitude = &lng

	a, err := s.crm.CreateAccount(ctx, a)
	if err != nil {
		return err
	}

	var contactIDs []string
	for i := 0; i < s.rng.Intn(3)+1; i++ {
		c, err := s.crm.CreateContact(ctx, &domain.Contact{
			AccountID:      a.ID,
			FirstName:      s.pick(seedFirstNames),
			LastName:       s.pick(seedLastNames),
			Title:          s.pick(seedTitles),
			DecisionMaker:  i == 0,
			InfluenceLevel: s.rng.Intn(10) + 1,
			Department:     s.pick([]string{"procurement", "operations", "finance"}),
			PreferredComm:  s.pick([]string{"email", "call", "meeting"}),
		})
		if err != nil {
			return err
		}
		contactIDs = append(contactIDs, c.ID)
	}

	var oppIDs []string
	for i := 0; i < s.rng.Intn(3); i++ {
		stage := domain.OpportunityStages[s.rng.Intn(len(domain.OpportunityStages))]
		o, err := s.crm.CreateOpportunity(ctx, &domain.Opportunity{
			AccountID:         a.ID,
			Name:              fmt.Sprintf("%s - %s", a.Name, s.pick(seedOppTemplates)),
			Stage:             stage,
			Probability:       float64(s.rng.Intn(101)),
			Amount:            float64(s.rng.Intn(990)+10) * 1000,
			ExpectedCloseDate: time.Now().UTC().AddDate(0, 0, s.rng.Intn(180)),
			CreatedDate:       created.AddDate(0, 0, s.rng.Intn(90)),
			ProductLines:      s.pickProducts(),
		})
		if err != nil {
			return err
		}
		oppIDs = append(oppIDs, o.ID)
	}

	for i := 0; i < s.rng.Intn(6)+2; i++ {
		cm := &domain.Communication{
			AccountID:           a.ID,
			CommunicationType:   domain.CommunicationTypes[s.rng.Intn(len(domain.CommunicationTypes))],
			Subject:             s.pick(seedSubjects),
			Date:                created.AddDate(0, 0, s.rng.Intn(120)),
			Direction:           s.pickDirection(),
			SentimentLabel:      domain.SentimentLabels[s.rng.Intn(len(domain.SentimentLabels))],
			SentimentConfidence: round2(0.5 + s.rng.Float64()*0.5),
		}
		if len(contactIDs) > 0 {
			cm.ContactID = s.pick(contactIDs)
		}
		if len(oppIDs) > 0 && s.rng.Intn(2) == 0 {
			cm.OpportunityID = s.pick(oppIDs)
		}
		if _, err := s.crm.CreateCommunication(ctx, cm); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) companyName(t domain.AccountType) string {
	return s.pick(seedCompanyPrefixes) + " " + s.pick(seedCompanySuffixes[t])
}

func (s *Seeder) pickRegion() string {
	regions := make([]string, 0, len(seedRegions))
	for r := range seedRegions {
		regions = append(regions, r)
	}
	// Map iteration order is random; sort for reproducible picks.
	sort.Strings(regions)
	return s.pick(regions)
}

func (s *Seeder) pickProducts() []domain.ProductLine {
	n := s.rng.Intn(5) + 1
	picked := make(map[domain.ProductLine]bool, n)
	out := make([]domain.ProductLine, 0, n)
	for len(out) < n {
		p := domain.ProductLines[s.rng.Intn(len(domain.ProductLines))]
		if !picked[p] {
			picked[p] = true
			out = append(out, p)
		}
	}
	return out
}

func (s *Seeder) pickDirection() domain.Direction {
	if s.rng.Intn(2) == 0 {
		return domain.DirectionInbound
	}
	return domain.DirectionOutbound
}

func (s *Seeder) pick(values []string) string {
	return values[s.rng.Intn(len(values))]
}
