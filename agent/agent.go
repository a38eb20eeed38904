package agent

import (
	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/SaiNageswarS/shop-assistant/llm"
	"github.com/SaiNageswarS/shop-assistant/memory"
)

type Intent string

const (
	IntentProductQuery Intent = "product_query"
	IntentSmallTalk    Intent = "small_talk"
	IntentComplaint    Intent = "complaint"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentProductQuery, IntentSmallTalk, IntentComplaint:
		return true
	}
	return false
}

func historyMessages(history []db.TurnModel) []llm.Message {
	return memory.ToMessages(history)
}
