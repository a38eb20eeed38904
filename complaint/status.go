package complaint

import (
	"fmt"

	"github.com/SaiNageswarS/shop-assistant/db"
)

var allowedTransitions = map[db.ComplaintStatus][]db.ComplaintStatus{
	db.StatusOpen:       {db.StatusInProgress, db.StatusResolved, db.StatusClosed},
	db.StatusInProgress: {db.StatusResolved, db.StatusClosed},
	db.StatusResolved:   {db.StatusClosed},
}

// Transition moves the complaint to a new status and records the change.
// ResolvedAt is set exactly when the complaint enters resolved and cleared when it leaves.
func Transition(c *db.ComplaintModel, to db.ComplaintStatus, now int64) error {
	if c.Status == to {
		return nil
	}
	if !canTransition(c.Status, to) {
		return fmt.Errorf("complaint %s: cannot move from %s to %s", c.ComplaintID, c.Status, to)
	}

	c.StatusHistory = append(c.StatusHistory, db.StatusChange{From: c.Status, To: to, At: now})
	c.Status = to
	c.UpdatedOn = now

	if to == db.StatusResolved {
		c.ResolvedAt = now
	} else {
		c.ResolvedAt = 0
	}
	return nil
}

func canTransition(from, to db.ComplaintStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
