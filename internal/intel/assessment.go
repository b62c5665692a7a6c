package intel

import "time"

// Dimension names used in IntelligenceAssessment.Dimensions.
const (
	DimKeyword      = "keyword"
	DimEntity       = "entity_significance"
	DimCredibility  = "source_credibility"
	DimTemporal     = "temporal_relevance"
	DimGeopolitical = "geopolitical_context"
	DimThreat       = "threat"
)

// Secondary factor names.
const (
	FactorDepth          = "content_depth"
	FactorLinguistic     = "linguistic_indicators"
	FactorCrossReference = "cross_reference"
	FactorOperational    = "operational_relevance"
	FactorStrategic      = "strategic_importance"
)

// DimensionScore is a 0..100 score with its scorer-specific breakdown.
type DimensionScore struct {
	Score   float64 `json:"score"`
	Details any     `json:"details,omitempty"`
}

// ThreatCategory is one of the fixed threat classes.
type ThreatCategory string

const (
	ThreatNone       ThreatCategory = "NONE"
	ThreatNuclear    ThreatCategory = "NUCLEAR"
	ThreatMilitary   ThreatCategory = "MILITARY"
	ThreatTerrorist  ThreatCategory = "TERRORIST"
	ThreatCyber      ThreatCategory = "CYBER"
	ThreatHealth     ThreatCategory = "HEALTH"
	ThreatEconomic   ThreatCategory = "ECONOMIC"
	ThreatDiplomatic ThreatCategory = "DIPLOMATIC"
)

// CategoryScore is one threat category's raw evidence and score.
type CategoryScore struct {
	Category ThreatCategory `json:"category"`
	Keywords []string       `json:"keywords,omitempty"`
	Patterns []string       `json:"patterns,omitempty"`
	Raw      float64        `json:"raw"`
	Risk     float64        `json:"risk"`
	Weighted float64        `json:"weighted"`
}

// ThreatModifiers records the multipliers applied to the primary category.
type ThreatModifiers struct {
	Timeframe  string  `json:"timeframe"`
	Escalation float64 `json:"escalation"`
	Region     string  `json:"region,omitempty"`
	Geographic float64 `json:"geographic"`
	ActorType  string  `json:"actor_type,omitempty"`
	Actor      float64 `json:"actor"`
	Certainty  string  `json:"certainty"`
	Confidence float64 `json:"confidence"`

	// Floored is set when the imminent-nuclear rule lifted the score.
	Floored bool `json:"floored,omitempty"`
}

// ThreatAssessment is the threat assessor's output.
type ThreatAssessment struct {
	Score         float64         `json:"score"`
	Level         Level           `json:"level"`
	PrimaryThreat ThreatCategory  `json:"primary_threat"`
	Confidence    float64         `json:"confidence"`
	Categories    []CategoryScore `json:"categories,omitempty"`
	Modifiers     ThreatModifiers `json:"modifiers"`
}

// DuplicateVerdict is the deduplicator's output.
type DuplicateVerdict struct {
	IsDuplicate         bool    `json:"is_duplicate"`
	DuplicateOfID       string  `json:"duplicate_of_id,omitempty"`
	Similarity          float64 `json:"similarity"`
	IsSignificantUpdate bool    `json:"is_significant_update"`
}

// Contribution is one weighted input to a composite score.
type Contribution struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ConfidenceBreakdown shows how assessment confidence was assembled.
type ConfidenceBreakdown struct {
	Consistency float64 `json:"consistency"`
	Credibility float64 `json:"credibility"`
	Entity      float64 `json:"entity"`
	Temporal    float64 `json:"temporal"`
	Penalty     float64 `json:"penalty"`
	Final       float64 `json:"final"`
}

// Breakdown exposes every intermediate of the score combination.
type Breakdown struct {
	Primary            map[string]Contribution `json:"primary"`
	PrimaryComposite   float64                 `json:"primary_composite"`
	Secondary          map[string]Contribution `json:"secondary,omitempty"`
	SecondaryComposite float64                 `json:"secondary_composite"`
	SecondaryApplied   bool                    `json:"secondary_applied"`
	Blended            float64                 `json:"blended"`
	ContextMultiplier  float64                 `json:"context_multiplier"`
	Adjusted           float64                 `json:"adjusted"`
	Confidence         ConfidenceBreakdown     `json:"confidence"`
	BasePriority       Level                   `json:"base_priority"`
	Overrides          []string                `json:"overrides,omitempty"`
}

// Diagnostic is a non-fatal problem recorded during analysis.
type Diagnostic struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Diagnostic codes.
const (
	DiagInvalidInput    = "INVALID_INPUT"
	DiagAnalysisFailure = "ANALYSIS_FAILURE"
	DiagHintUsed        = "HINT_USED"
)

// Tags the engine may attach.
const (
	TagBreaking            = "BREAKING"
	TagTimeSensitive       = "TIME_SENSITIVE"
	TagDuplicate           = "DUPLICATE"
	TagSignificantUpdate   = "SIGNIFICANT_UPDATE"
	TagPromotional         = "PROMOTIONAL"
	TagAdversarial         = "ADVERSARIAL"
	TagAllied              = "ALLIED"
	TagMultilateral        = "MULTILATERAL"
	TagCriticalCombination = "CRITICAL_COMBINATION"
	TagEscalation          = "ESCALATION"
	TagPremiumSource       = "PREMIUM_SOURCE"
	TagLowCredibility      = "LOW_CREDIBILITY"
	TagIncomplete          = "INCOMPLETE"
	TagUnprocessed         = "UNPROCESSED"
	TagHinted              = "HINTED"
	TagCorroborated        = "CORROBORATED"
)

// IntelligenceAssessment is the engine's complete output for one article.
type IntelligenceAssessment struct {
	ID                 string                    `json:"id"`
	ArticleID          string                    `json:"article_id"`
	AnalyzedAt         time.Time                 `json:"analyzed_at"`
	OverallScore       float64                   `json:"overall_score"`
	Confidence         float64                   `json:"confidence"`
	Priority           Level                     `json:"priority"`
	PriorityConfidence float64                   `json:"priority_confidence"`
	Categories         []string                  `json:"categories"`
	Tags               []string                  `json:"tags"`
	Entities           EntityAnalysis            `json:"entities"`
	Threat             ThreatAssessment          `json:"threat"`
	Duplicate          DuplicateVerdict          `json:"duplicate"`
	Dimensions         map[string]DimensionScore `json:"dimensions"`
	Breakdown          Breakdown                 `json:"breakdown"`
	Promotional        bool                      `json:"promotional,omitempty"`
	Diagnostics        []Diagnostic              `json:"diagnostics,omitempty"`
}

// HasTag reports whether the assessment carries tag.
func (a IntelligenceAssessment) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
