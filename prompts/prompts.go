package prompts

import (
	"github.com/SaiNageswarS/shop-assistant/catalog"
	"github.com/SaiNageswarS/shop-assistant/llm"
)

const (
	DefaultShopName      = "TechShop"
	DefaultAssistantName = "Mai"
)

// RenderIntentPrompt renders the classifier prompt for the latest message.
func RenderIntentPrompt(history []llm.Message, message string) (systemPrompt, userPrompt string, err error) {
	systemPrompt, err = loadPrompt("templates/intent_system.md", nil)
	if err != nil {
		return "", "", err
	}

	userPrompt, err = loadPrompt("templates/intent_user.md", struct {
		History []llm.Message
		Message string
	}{history, message})
	if err != nil {
		return "", "", err
	}

	return systemPrompt, userPrompt, nil
}

type AnswerPromptData struct {
	ShopName      string
	AssistantName string
	Products      []catalog.Product
	History       []llm.Message
}

type productView struct {
	catalog.Product
	Price string
}

// RenderAnswerPrompt renders the reply generator's system prompt.
func RenderAnswerPrompt(data AnswerPromptData) (string, error) {
	if data.ShopName == "" {
		data.ShopName = DefaultShopName
	}
	if data.AssistantName == "" {
		data.AssistantName = DefaultAssistantName
	}

	views := make([]productView, len(data.Products))
	for i, p := range data.Products {
		views[i] = productView{Product: p, Price: FormatPrice(p.Price)}
	}

	return loadPrompt("templates/answer_system.md", struct {
		ShopName      string
		AssistantName string
		Products      []productView
		History       []llm.Message
	}{data.ShopName, data.AssistantName, views, data.History})
}

// KnownComplaint is what the intake has collected so far.
type KnownComplaint struct {
	Description string
	Email       string
	Phone       string
	Tags        []string
}

func (k *KnownComplaint) empty() bool {
	return k == nil || (k.Description == "" && k.Email == "" && k.Phone == "" && len(k.Tags) == 0)
}

// RenderComplaintPrompt renders the complaint intake prompts.
func RenderComplaintPrompt(shopName string, known *KnownComplaint, history []llm.Message, message string) (systemPrompt, userPrompt string, err error) {
	if shopName == "" {
		shopName = DefaultShopName
	}
	if known.empty() {
		known = nil
	}

	systemPrompt, err = loadPrompt("templates/complaint_system.md", struct {
		ShopName string
		Known    *KnownComplaint
	}{shopName, known})
	if err != nil {
		return "", "", err
	}

	userPrompt, err = loadPrompt("templates/complaint_user.md", struct {
		History []llm.Message
		Message string
	}{history, message})
	if err != nil {
		return "", "", err
	}

	return systemPrompt, userPrompt, nil
}
