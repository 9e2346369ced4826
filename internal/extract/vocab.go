package extract

import "github.com/ppiankov/symptriage/internal/model"

// severityTerm pairs a word with the modifier it signals
type severityTerm struct {
	word     string
	modifier model.SeverityModifier
}

// severityTerms is the ranked severity vocabulary; the highest rank present wins
var severityTerms = []severityTerm{
	{"severe", model.SeveritySevere},
	{"severely", model.SeveritySevere},
	{"worst", model.SeveritySevere},
	{"intense", model.SeveritySevere},
	{"excruciating", model.SeveritySevere},
	{"unbearable", model.SeveritySevere},
	{"extreme", model.SeveritySevere},
	{"agonizing", model.SeveritySevere},
	{"moderate", model.SeverityModerate},
	{"significant", model.SeverityModerate},
	{"considerable", model.SeverityModerate},
	{"mild", model.SeverityMild},
	{"slight", model.SeverityMild},
	{"minor", model.SeverityMild},
}

// redFlagPhrases force URGENT on their own
var redFlagPhrases = []string{
	"chest pain",
	"shortness of breath",
	"difficulty breathing",
	"trouble breathing",
	"one-sided weakness",
	"confusion",
	"fainting",
	"unconscious",
	"seizure",
	"uncontrolled bleeding",
	"severe allergic reaction",
	"blue lips",
	"worst headache",
	"stiff neck with fever",
	"vision loss",
	"severe abdominal pain",
	"blood in stool",
	"black tarry stool",
}

var durationUnits = map[string]model.DurationUnit{
	"hour":  model.UnitHour,
	"hours": model.UnitHour,
	"day":   model.UnitDay,
	"days":  model.UnitDay,
	"week":  model.UnitWeek,
	"weeks": model.UnitWeek,
}

var spelledNumbers = map[string]float64{
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
	"six":   6,
	"seven": 7,
	"eight": 8,
	"nine":  9,
	"ten":   10,
}

// RedFlagPhrases returns the fixed red-flag list in match order
func RedFlagPhrases() []string {
	return append([]string(nil), redFlagPhrases...)
}
