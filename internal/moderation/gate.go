package moderation

import (
	"github.com/sirupsen/logrus"

	"github.com/ekuznetsov/campus-market-backend/internal/logger"
	"github.com/ekuznetsov/campus-market-backend/internal/models"
)

// GateDecision — решение о допуске объявления к публикации.
type GateDecision struct {
	Allowed           bool
	ViolationDetected bool
	Reason            string
}

// Gate применяет политику площадки к вердикту сканера с учётом роли автора.
type Gate struct {
	scanner *Scanner
}

func NewGate(scanner *Scanner) *Gate {
	return &Gate{scanner: scanner}
}

// Evaluate решает, может ли пользователь опубликовать объявление.
// Администраторы публикуют помеченный контент, но факт срабатывания
// логируется для наблюдаемости.
func (g *Gate) Evaluate(user *models.User, title, description string) GateDecision {
	result := g.scanner.Check(title, description)
	if !result.IsViolation {
		return GateDecision{Allowed: true}
	}

	if user.IsAdmin() {
		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"user_id":       user.ID,
				"matched_terms": result.MatchedTerms,
			}).Warn("admin posted flagged listing content")
		}
		return GateDecision{Allowed: true, ViolationDetected: true, Reason: result.Reason}
	}

	return GateDecision{Allowed: false, ViolationDetected: true, Reason: result.Reason}
}
