package scoring

import (
	"math"
	"time"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

// AgeBucket is one band of the age decay curve.
type AgeBucket struct {
	Name     string
	MaxHours float64 // inclusive upper bound
	Base     float64 // score at the start of the bucket
	Next     float64 // score the bucket decays toward
}

// AgeBuckets in ascending age. The last bucket is open ended; it decays
// until HistoricalFloorHours and stays at its Next score after that.
var AgeBuckets = []AgeBucket{
	{"BREAKING", 1, 100, 90},
	{"FRESH", 6, 90, 75},
	{"RECENT", 24, 75, 60},
	{"CURRENT", 72, 60, 45},
	{"WEEK", 168, 45, 15},
	{"HISTORICAL", math.Inf(1), 15, 5},
}

// Temporal constants.
const (
	BucketUnknown        = "UNKNOWN"
	HistoricalFloorHours = 720.0
	intraBucketDecay     = 3.0
	unknownAgeScore      = 50.0

	urgencyStep          = 0.1
	urgencyCap           = 0.5
	TimeSensitiveAtLeast = 1.2

	// Allowed clock skew before a publish time counts as future-dated.
	futureSkew = 5 * time.Minute

	confidencePublished = 90.0
	confidenceFetched   = 60.0
	confidenceFuture    = 40.0
	confidenceUnknown   = 50.0
)

// contentModifiers multiply the age score; only the largest matched
// category applies.
var contentModifiers = []struct {
	name       string
	multiplier float64
	terms      []string
}{
	{"urgency", 1.3, []string{"BREAKING", "TODAY", "NOW", "JUST IN", "URGENT", "IMMEDIATELY",
		"THIS MORNING", "TONIGHT", "LIVE", "DEVELOPING", "RIGHT NOW"}},
	{"future", 1.1, []string{"WILL", "PLANNED", "UPCOMING", "EXPECTED", "NEXT WEEK", "TOMORROW",
		"SCHEDULED", "FORTHCOMING", "LOOMING"}},
	{"past", 0.8, []string{"LAST YEAR", "YEARS AGO", "ANNIVERSARY", "HISTORICALLY", "IN RETROSPECT",
		"DECADES AGO", "LOOKING BACK", "FROM THE ARCHIVE"}},
}

var urgencyTerms = []string{
	"ATTACK", "DEPLOYMENT", "DEPLOYED", "ESCALATION", "MOBILIZATION", "INVASION", "EVACUATION",
	"EVACUATE", "LAUNCH", "LAUNCHED", "STRIKE", "EMERGENCY", "OUTBREAK", "BREACH", "ULTIMATUM",
	"IMMINENT",
}

// cyclicalFactors bump months with recurring security events: the Munich
// Security Conference, G7 and NATO summits, the UN General Assembly, budget
// cycles and the G20.
var cyclicalFactors = map[time.Month]float64{
	time.February:  1.03,
	time.April:     1.02,
	time.June:      1.05,
	time.July:      1.03,
	time.September: 1.05,
	time.October:   1.03,
	time.November:  1.03,
}

// TemporalDetails is the breakdown of a temporal score.
type TemporalDetails struct {
	AgeHours        float64 `json:"age_hours"`
	Bucket          string  `json:"bucket"`
	BaseScore       float64 `json:"base_score"`
	ContentModifier float64 `json:"content_modifier"`
	ContentCategory string  `json:"content_category,omitempty"`
	Urgency         float64 `json:"urgency"`
	UrgencyTerms    int     `json:"urgency_terms"`
	Cyclical        float64 `json:"cyclical"`
	TimeSensitive   bool    `json:"time_sensitive"`
	Confidence      float64 `json:"confidence"`
}

// TemporalScorer scores how current an article is.
type TemporalScorer struct {
	modifiers []*textmatch.Index
	urgency   *textmatch.Index
}

func NewTemporalScorer() *TemporalScorer {
	s := &TemporalScorer{urgency: textmatch.Keys(urgencyTerms...)}
	for _, m := range contentModifiers {
		s.modifiers = append(s.modifiers, textmatch.Keys(m.terms...))
	}
	return s
}

func (s *TemporalScorer) Name() string { return intel.DimTemporal }

// Score computes the temporal dimension as of now.
func (s *TemporalScorer) Score(a intel.Article, c preprocess.Content, now time.Time) (float64, TemporalDetails) {
	d := TemporalDetails{ContentModifier: 1, Urgency: 1, Cyclical: 1}

	ts, ok := a.Timestamp()
	switch {
	case !ok:
		d.Bucket = BucketUnknown
		d.BaseScore = unknownAgeScore
		d.Confidence = confidenceUnknown
	default:
		age := now.Sub(ts)
		switch {
		case a.PublishedAt.IsZero():
			d.Confidence = confidenceFetched
		case age < -futureSkew:
			d.Confidence = confidenceFuture
		default:
			d.Confidence = confidencePublished
		}
		if age < 0 {
			age = 0 // future-dated items count as brand new
		}
		d.AgeHours = intel.Round(age.Hours(), 3)
		d.Bucket, d.BaseScore = AgeScore(age.Hours())
		if f, ok := cyclicalFactors[ts.Month()]; ok {
			d.Cyclical = f
		}
	}

	for i, ix := range s.modifiers {
		if !ix.Contains(c.Words) {
			continue
		}
		m := contentModifiers[i]
		if d.ContentCategory == "" || m.multiplier > d.ContentModifier {
			d.ContentModifier = m.multiplier
			d.ContentCategory = m.name
		}
	}

	d.UrgencyTerms = len(s.urgency.Find(c.Words, nil))
	d.Urgency = 1 + math.Min(urgencyStep*float64(d.UrgencyTerms), urgencyCap)
	d.TimeSensitive = d.Urgency >= TimeSensitiveAtLeast

	score := d.BaseScore * d.ContentModifier * d.Urgency * d.Cyclical
	return intel.Round(intel.ClampScore(score), 2), d
}

// AgeScore maps an age in hours to its bucket and decayed base score.
// Within a bucket the score falls from Base toward Next as
// Next + (Base-Next)*exp(-3*fraction).
func AgeScore(hours float64) (string, float64) {
	if hours < 0 {
		hours = 0
	}
	lower := 0.0
	for _, b := range AgeBuckets {
		upper := b.MaxHours
		if math.IsInf(upper, 1) {
			upper = HistoricalFloorHours
		}
		if hours <= b.MaxHours {
			frac := math.Min((hours-lower)/(upper-lower), 1)
			if hours > upper {
				return b.Name, b.Next
			}
			return b.Name, intel.Round(b.Next+(b.Base-b.Next)*math.Exp(-intraBucketDecay*frac), 2)
		}
		lower = b.MaxHours
	}
	last := AgeBuckets[len(AgeBuckets)-1]
	return last.Name, last.Next
}
