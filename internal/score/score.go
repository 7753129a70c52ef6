// Package score implements the heuristic complaint-relevance scorer.
//
// The scorer is a pure function over fixed lexicons: geographic terms for
// the Chaoshan region, complaint terms, evidentiary terms, and
// promotional/spam terms. The design is intentionally simple and
// auditable; its failure mode is false negatives on novel phrasing.
package score

import (
	"math"
	"regexp"
	"strings"

	"github.com/chek-app/crawler/internal/model"
)

var geoWords = []string{
	"潮汕", "汕头", "潮州", "揭阳", "南澳", "普宁",
	"潮阳", "潮南", "饶平", "澄海", "潮安", "榕城",
}

var complaintWords = []string{
	"投诉", "举报", "曝光", "维权", "被坑", "宰客", "欺诈",
	"黑店", "强制", "恶心", "报警", "12315", "工商", "市场监管",
}

var evidenceWords = []string{
	"时间", "地点", "截图", "录音", "订单", "转账",
	"发票", "车牌", "店名", "定位", "金额", "元",
}

var spamWords = []string{
	"探店", "种草", "优惠", "团购", "买一送一", "私信",
	"加V", "vx", "微信号", "带货", "推广",
}

const (
	baseScore      = 0.15
	geoBonus       = 0.18
	complaintBonus = 0.25

	complaintStep = 0.06
	complaintCap  = 0.25
	evidenceStep  = 0.04
	evidenceCap   = 0.2
	spamStep      = 0.08
	spamCap       = 0.35

	shortLen      = 80
	mediumLen     = 160
	longLen       = 900
	shortPenalty  = 0.25
	mediumPenalty = 0.12
	longBonus     = 0.06

	spamLabelMin     = 2
	evidenceLabelMin = 2
)

var wsRe = regexp.MustCompile(`\s+`)

// Score maps a title and body to a relevance score in [0,1] plus semantic
// labels. Deterministic and side-effect-free.
func Score(title, body string) model.ScoreResult {
	text := title + "\n" + body

	length := len([]rune(wsRe.ReplaceAllString(text, "")))
	geoHit := hasAny(text, geoWords)
	complaintHit := hasAny(text, complaintWords)
	complaintCount := countAny(text, complaintWords)
	evidenceCount := countAny(text, evidenceWords)
	spamCount := countAny(text, spamWords)

	s := baseScore
	if geoHit {
		s += geoBonus
	}
	if complaintHit {
		s += complaintBonus
	}
	s += math.Min(complaintCap, float64(complaintCount)*complaintStep)
	s += math.Min(evidenceCap, float64(evidenceCount)*evidenceStep)

	switch {
	case length < shortLen:
		s -= shortPenalty
	case length < mediumLen:
		s -= mediumPenalty
	case length > longLen:
		s += longBonus
	}

	s -= math.Min(spamCap, float64(spamCount)*spamStep)

	var labels []model.Label
	if complaintHit {
		labels = append(labels, model.LabelComplaint)
	}
	if geoHit {
		labels = append(labels, model.LabelGeoRelated)
	}
	if spamCount >= spamLabelMin && !complaintHit {
		labels = append(labels, model.LabelLikelySpam)
	}
	if evidenceCount >= evidenceLabelMin {
		labels = append(labels, model.LabelHasEvidence)
	}

	return model.ScoreResult{Score: clamp01(s), Labels: labels}
}

func hasAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// countAny counts how many distinct lexicon words appear, not total
// occurrences.
func countAny(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
