package predictor

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// FeatureCount is the length of the raw feature vector built from a questionnaire.
const FeatureCount = 17

const schoolTypeUnknown = -1

// schoolTypes encodes the only categorical questionnaire field.
var schoolTypes = map[string]float64{
	"Public":  0,
	"Private": 1,
}

// Fields lists questionnaire keys in feature vector order.
var Fields = [FeatureCount]string{
	"sslc",
	"school_type",
	"no_of_miniprojects",
	"coresub_skill",
	"aptitude_skill",
	"programming_skill",
	"abstractthink_skill",
	"design_skill",
	"first_computer",
	"first_program",
	"ds_coding",
	"technology_used",
	"sympos_attend",
	"sympos_won",
	"extracurricular",
	"learning_style",
	"college_skills",
}

// Questionnaire is the decoded aptitude questionnaire.
type Questionnaire struct {
	SSLC               float64 `mapstructure:"sslc" json:"sslc"`
	SchoolType         string  `mapstructure:"school_type" json:"school_type"`
	MiniProjects       float64 `mapstructure:"no_of_miniprojects" json:"no_of_miniprojects"`
	CoreSubSkill       float64 `mapstructure:"coresub_skill" json:"coresub_skill"`
	AptitudeSkill      float64 `mapstructure:"aptitude_skill" json:"aptitude_skill"`
	ProgrammingSkill   float64 `mapstructure:"programming_skill" json:"programming_skill"`
	AbstractThinkSkill float64 `mapstructure:"abstractthink_skill" json:"abstractthink_skill"`
	DesignSkill        float64 `mapstructure:"design_skill" json:"design_skill"`
	FirstComputer      float64 `mapstructure:"first_computer" json:"first_computer"`
	FirstProgram       float64 `mapstructure:"first_program" json:"first_program"`
	DSCoding           float64 `mapstructure:"ds_coding" json:"ds_coding"`
	TechnologyUsed     float64 `mapstructure:"technology_used" json:"technology_used"`
	SymposAttend       float64 `mapstructure:"sympos_attend" json:"sympos_attend"`
	SymposWon          float64 `mapstructure:"sympos_won" json:"sympos_won"`
	Extracurricular    float64 `mapstructure:"extracurricular" json:"extracurricular"`
	LearningStyle      float64 `mapstructure:"learning_style" json:"learning_style"`
	CollegeSkills      float64 `mapstructure:"college_skills" json:"college_skills"`
}

// SchoolTypeCode maps a school type to its numeric code. Unknown values map to -1.
func SchoolTypeCode(schoolType string) float64 {
	code, ok := schoolTypes[schoolType]
	if !ok {
		return schoolTypeUnknown
	}
	return code
}

// DecodeQuestionnaire converts a raw JSON object into a Questionnaire.
// Every field is required, school_type may be null. Numeric fields accept numbers,
// numeric strings and booleans and must be finite.
func DecodeQuestionnaire(raw map[string]any) (*Questionnaire, error) {
	if raw == nil {
		return nil, &ValidationError{Reason: "questionnaire body is empty"}
	}

	for _, field := range Fields {
		value, ok := raw[field]
		if !ok {
			return nil, &ValidationError{Field: field, Reason: "is required"}
		}
		// any school type is accepted, unknown ones (null included) map to -1
		if field == "school_type" {
			continue
		}
		if value == nil {
			return nil, &ValidationError{Field: field, Reason: "must not be null"}
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return nil, &ValidationError{Field: field, Reason: "must be a number, got empty string"}
		}
		if kind := reflect.TypeOf(value).Kind(); kind == reflect.Map || kind == reflect.Slice {
			return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("must be a number, got %T", value)}
		}
	}

	var q Questionnaire
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &q,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create questionnaire decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	// numeric strings such as "NaN" or "Inf" survive weak decoding
	for i, v := range q.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ValidationError{Field: Fields[i], Reason: "must be a finite number"}
		}
	}

	return &q, nil
}

// Vector assembles the raw feature vector in the fixed field order.
func (q *Questionnaire) Vector() []float64 {
	return []float64{
		q.SSLC,
		SchoolTypeCode(q.SchoolType),
		q.MiniProjects,
		q.CoreSubSkill,
		q.AptitudeSkill,
		q.ProgrammingSkill,
		q.AbstractThinkSkill,
		q.DesignSkill,
		q.FirstComputer,
		q.FirstProgram,
		q.DSCoding,
		q.TechnologyUsed,
		q.SymposAttend,
		q.SymposWon,
		q.Extracurricular,
		q.LearningStyle,
		q.CollegeSkills,
	}
}
