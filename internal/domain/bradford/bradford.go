// Пакет bradford — коэффициент Брэдфорда и классификация риска.
// Значение = occurrences² × totalDays. Числовое значение авторитетно,
// уровень риска — только классификация для отображения.
package bradford

import (
	"fmt"
	"math"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// Tier — уровень риска.
type Tier string

// Уровни риска в порядке возрастания серьёзности.
const (
	TierGreen  Tier = "green"
	TierAmber  Tier = "amber"
	TierOrange Tier = "orange"
	TierRed    Tier = "red"
)

// Severity возвращает порядковую серьёзность уровня (green = 0).
// Для неизвестного уровня возвращает -1.
func (t Tier) Severity() int {
	switch t {
	case TierGreen:
		return 0
	case TierAmber:
		return 1
	case TierOrange:
		return 2
	case TierRed:
		return 3
	}
	return -1
}

// Thresholds — минимальные значения для каждого уровня, кроме green.
// Значения ниже Amber — green.
type Thresholds struct {
	Amber  int64 `yaml:"amber"`
	Orange int64 `yaml:"orange"`
	Red    int64 `yaml:"red"`
}

// DefaultThresholds — пороги по умолчанию.
var DefaultThresholds = Thresholds{Amber: 50, Orange: 125, Red: 400}

// Validate проверяет 0 < Amber < Orange < Red.
func (t Thresholds) Validate() error {
	if t.Amber <= 0 || t.Amber >= t.Orange || t.Orange >= t.Red {
		return fmt.Errorf("%w: пороги должны удовлетворять 0 < amber < orange < red, получено %d/%d/%d",
			model.ErrInvalidInput, t.Amber, t.Orange, t.Red)
	}
	return nil
}

// Score — результат расчёта.
type Score struct {
	Value int64 `json:"value"`
	Tier  Tier  `json:"tier"`
}

// Scorer — расчёт коэффициента с заданными порогами.
type Scorer struct {
	thresholds Thresholds
}

// NewScorer создаёт Scorer, проверяя пороги.
func NewScorer(t Thresholds) (*Scorer, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{thresholds: t}, nil
}

// maxOccurrences — наибольшее occurrences, при котором occurrences² помещается в int64.
const maxOccurrences = 3037000499

// Value вычисляет occurrences² × totalDays.
// Отрицательные аргументы и переполнение — ErrInvalidInput.
// При occurrences = 0 результат 0 при любом totalDays.
func Value(occurrences, totalDays int) (int64, error) {
	if occurrences < 0 || totalDays < 0 {
		return 0, fmt.Errorf("%w: отрицательные счётчики (occurrences=%d, total_days=%d)",
			model.ErrInvalidInput, occurrences, totalDays)
	}
	if occurrences == 0 || totalDays == 0 {
		return 0, nil
	}
	if int64(occurrences) > maxOccurrences {
		return 0, fmt.Errorf("%w: occurrences=%d слишком велико", model.ErrInvalidInput, occurrences)
	}

	sq := int64(occurrences) * int64(occurrences)
	if int64(totalDays) > math.MaxInt64/sq {
		return 0, fmt.Errorf("%w: переполнение при occurrences=%d, total_days=%d",
			model.ErrInvalidInput, occurrences, totalDays)
	}
	return sq * int64(totalDays), nil
}

// TierFor классифицирует значение. Отрицательных значений Value не возвращает,
// но они классифицируются как green.
func (s *Scorer) TierFor(value int64) Tier {
	switch {
	case value >= s.thresholds.Red:
		return TierRed
	case value >= s.thresholds.Orange:
		return TierOrange
	case value >= s.thresholds.Amber:
		return TierAmber
	default:
		return TierGreen
	}
}

// Score вычисляет значение и уровень риска.
func (s *Scorer) Score(occurrences, totalDays int) (Score, error) {
	v, err := Value(occurrences, totalDays)
	if err != nil {
		return Score{}, err
	}
	return Score{Value: v, Tier: s.TierFor(v)}, nil
}
