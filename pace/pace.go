// Package pace converts between rowing ergometer power and pace.
//
// The ergometer relation is watts = C / (pace/500)^3 with pace in seconds per
// 500 m and C = 2.8, so both directions are closed form.
package pace

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// C is the ergometer drag constant in the power/pace relation.
const C = 2.8

// SplitDistance is the distance in metres a pace is quoted over.
const SplitDistance = 500.0

// RaceDistance is the 2k race distance in metres.
const RaceDistance = 2000.0

// PowerToPace500 returns the seconds per 500 m sustained at watts.
func PowerToPace500(watts float64) (float64, error) {
	if !(watts > 0) || math.IsInf(watts, 1) {
		return 0, errors.NewDomainError("PowerToPace500", "power must be positive and finite", watts)
	}
	return SplitDistance * math.Cbrt(C/watts), nil
}

// PaceToPower returns the watts needed to hold paceSeconds per 500 m.
func PaceToPower(paceSeconds float64) (float64, error) {
	if !(paceSeconds > 0) || math.IsInf(paceSeconds, 1) {
		return 0, errors.NewDomainError("PaceToPower", "pace must be positive and finite", paceSeconds)
	}
	r := paceSeconds / SplitDistance
	return C / (r * r * r), nil
}

// Format renders a pace as MM:SS.s, rounded to the tenth. A rounding carry
// moves into the minutes, so 59.96 s is "01:00.0".
func Format(paceSeconds float64) string {
	tenths := int64(math.Round(paceSeconds * 10))
	return fmt.Sprintf("%02d:%04.1f", tenths/600, float64(tenths%600)/10)
}

// Parse reads a pace written as MM:SS.s, or as plain seconds.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	minPart, secPart, hasColon := strings.Cut(s, ":")
	if !hasColon {
		minPart, secPart = "0", s
	}
	minutes, err := strconv.Atoi(minPart)
	if err != nil || minutes < 0 {
		return 0, errors.NewValidationError("pace", "minutes must be a non-negative integer", s)
	}
	seconds, err := strconv.ParseFloat(secPart, 64)
	if err != nil || seconds < 0 || (hasColon && seconds >= 60) {
		return 0, errors.NewValidationError("pace", "seconds must be a number in [0, 60)", s)
	}
	return float64(minutes)*60 + seconds, nil
}

// PowerToPaceString is Format(PowerToPace500(watts)).
func PowerToPaceString(watts float64) (string, error) {
	p, err := PowerToPace500(watts)
	if err != nil {
		return "", err
	}
	return Format(p), nil
}

// PaceStringToPower is PaceToPower(Parse(s)).
func PaceStringToPower(s string) (float64, error) {
	p, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return PaceToPower(p)
}

// Split2k returns the 2000 m finishing time in seconds for an even-paced piece at watts.
func Split2k(watts float64) (float64, error) {
	p, err := PowerToPace500(watts)
	if err != nil {
		return 0, err
	}
	return p * RaceDistance / SplitDistance, nil
}

// FormatDuration renders seconds as M:SS.s, e.g. "6:40.0".
func FormatDuration(seconds float64) string {
	tenths := int64(math.Round(seconds * 10))
	return fmt.Sprintf("%d:%04.1f", tenths/600, float64(tenths%600)/10)
}
