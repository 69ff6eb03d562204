package domain

// Closed enumerations for categorical entity fields. The upstream CRM feeds
// occasionally ship free-text values for these; validation rejects anything
// outside the declared sets instead of accepting-and-ignoring.

// AccountType classifies a business partner in the beverage ecosystem.
type AccountType string

const (
	AccountBottler     AccountType = "bottler"
	AccountRetailer    AccountType = "retailer"
	AccountDistributor AccountType = "distributor"
	AccountQSR         AccountType = "qsr"
	AccountCinema      AccountType = "cinema"
	AccountStadium     AccountType = "stadium"
	AccountThemePark   AccountType = "theme_park"
	AccountGrocery     AccountType = "grocery"
	AccountConvenience AccountType = "convenience"
)

// AccountTypes lists every valid account type.
var AccountTypes = []AccountType{
	AccountBottler, AccountRetailer, AccountDistributor, AccountQSR,
	AccountCinema, AccountStadium, AccountThemePark, AccountGrocery,
	AccountConvenience,
}

// Valid reports whether t is a member of the closed set.
func (t AccountType) Valid() bool {
	for _, v := range AccountTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ProductLine identifies a product an account currently carries.
type ProductLine string

const (
	ProductClassic          ProductLine = "coca_cola_classic"
	ProductZeroSugar        ProductLine = "coca_cola_zero_sugar"
	ProductDietCoke         ProductLine = "diet_coke"
	ProductCherryCoke       ProductLine = "cherry_coke"
	ProductVanillaCoke      ProductLine = "vanilla_coke"
	ProductSprite           ProductLine = "sprite"
	ProductSpriteZero       ProductLine = "sprite_zero"
	ProductFantaOrange      ProductLine = "fanta_orange"
	ProductFantaGrape       ProductLine = "fanta_grape"
	ProductFantaStrawberry  ProductLine = "fanta_strawberry"
	ProductMMLemonade       ProductLine = "minute_maid_lemonade"
	ProductMMFruitPunch     ProductLine = "minute_maid_fruit_punch"
	ProductMMAppleJuice     ProductLine = "minute_maid_apple_juice"
	ProductPowerade         ProductLine = "powerade"
	ProductPoweradeZero     ProductLine = "powerade_zero"
	ProductSmartwater       ProductLine = "smartwater"
	ProductSmartwaterAlka   ProductLine = "smartwater_alkaline"
	ProductDasani           ProductLine = "dasani"
	ProductFreestyle        ProductLine = "coca_cola_freestyle"
	ProductSimplyOrange     ProductLine = "simply_orange"
	ProductCostaCoffee      ProductLine = "costa_coffee"
)

// ProductLines lists every valid product line.
var ProductLines = []ProductLine{
	ProductClassic, ProductZeroSugar, ProductDietCoke, ProductCherryCoke,
	ProductVanillaCoke, ProductSprite, ProductSpriteZero, ProductFantaOrange,
	ProductFantaGrape, ProductFantaStrawberry, ProductMMLemonade,
	ProductMMFruitPunch, ProductMMAppleJuice, ProductPowerade,
	ProductPoweradeZero, ProductSmartwater, ProductSmartwaterAlka,
	ProductDasani, ProductFreestyle, ProductSimplyOrange, ProductCostaCoffee,
}

// Valid reports whether p is a member of the closed set.
func (p ProductLine) Valid() bool {
	for _, v := range ProductLines {
		if p == v {
			return true
		}
	}
	return false
}

// OpportunityStage is the ordered pipeline stage of a deal.
type OpportunityStage string

const (
	StageProspecting   OpportunityStage = "prospecting"
	StageQualification OpportunityStage = "qualification"
	StageProposal      OpportunityStage = "proposal"
	StageNegotiation   OpportunityStage = "negotiation"
	StageClosedWon     OpportunityStage = "closed_won"
	StageClosedLost    OpportunityStage = "closed_lost"
)

// OpportunityStages lists the stages in pipeline order.
var OpportunityStages = []OpportunityStage{
	StageProspecting, StageQualification, StageProposal,
	StageNegotiation, StageClosedWon, StageClosedLost,
}

// Valid reports whether s is a member of the closed set.
func (s OpportunityStage) Valid() bool {
	for _, v := range OpportunityStages {
		if s == v {
			return true
		}
	}
	return false
}

// Closed reports whether the stage is terminal (won or lost).
func (s OpportunityStage) Closed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// SentimentLabel is the classified sentiment of a communication.
type SentimentLabel string

const (
	SentimentVeryPositive SentimentLabel = "very_positive"
	SentimentPositive     SentimentLabel = "positive"
	SentimentNeutral      SentimentLabel = "neutral"
	SentimentNegative     SentimentLabel = "negative"
	SentimentVeryNegative SentimentLabel = "very_negative"
)

// SentimentLabels lists every valid sentiment label.
var SentimentLabels = []SentimentLabel{
	SentimentVeryPositive, SentimentPositive, SentimentNeutral,
	SentimentNegative, SentimentVeryNegative,
}

// Valid reports whether l is a member of the closed set.
func (l SentimentLabel) Valid() bool {
	for _, v := range SentimentLabels {
		if l == v {
			return true
		}
	}
	return false
}

// Direction indicates who initiated a communication.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Valid reports whether d is a member of the closed set.
func (d Direction) Valid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// CommunicationType is the channel of a logged interaction.
type CommunicationType string

const (
	CommEmail   CommunicationType = "email"
	CommCall    CommunicationType = "call"
	CommMeeting CommunicationType = "meeting"
	CommVisit   CommunicationType = "visit"
)

// CommunicationTypes lists every valid communication channel.
var CommunicationTypes = []CommunicationType{CommEmail, CommCall, CommMeeting, CommVisit}

// Valid reports whether c is a member of the closed set.
func (c CommunicationType) Valid() bool {
	for _, v := range CommunicationTypes {
		if c == v {
			return true
		}
	}
	return false
}

// InsightPriority ranks how urgently an insight should be acted on.
type InsightPriority string

const (
	PriorityHigh   InsightPriority = "high"
	PriorityMedium InsightPriority = "medium"
	PriorityLow    InsightPriority = "low"
)

// Valid reports whether p is a member of the closed set.
func (p InsightPriority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}
