package utils

import (
	"errors"
	"fmt"
	"strings"

	"journeyboard/models"
)

// Reminder intents. Built-in templates are keyed by what the user still
// needs to do, not by the stage itself; "custom" takes operator-provided
// subject and message instead.
const (
	IntentCompleteProfile = "complete_profile"
	IntentChoosePlan      = "choose_plan"
	IntentCompletePayment = "complete_payment"
	IntentCustom          = "custom"
)

// ErrMissingFields blocks a custom reminder with an empty subject or
// message before any outbound call is made.
var ErrMissingFields = errors.New("Campos obrigatórios")

type builtinTemplate struct {
	Subject string
	Body    string
}

// The built-in catalog substitutes a single {name} placeholder. This is
// deliberately separate from the {{variable}} catalog of managed templates:
// quick reminders stay self-contained while managed templates are rendered
// by the notification function.
var builtinTemplates = map[string]builtinTemplate{
	IntentCompleteProfile: {
		Subject: "Complete seu perfil e apareça no diretório",
		Body: "Olá {name},\n\n" +
			"Notamos que você começou seu cadastro mas ainda não completou seu perfil. " +
			"Complete agora para aparecer no diretório e ser encontrada por novas clientes.\n\n" +
			"Leva menos de 5 minutos!\n\n" +
			"Abraços,\nEquipe",
	},
	IntentChoosePlan: {
		Subject: "Escolha o plano ideal para o seu negócio",
		Body: "Olá {name},\n\n" +
			"Seu perfil está pronto! O próximo passo é escolher o plano que melhor " +
			"atende o seu negócio. Temos opções para todos os tamanhos.\n\n" +
			"Qualquer dúvida, é só responder este email.\n\n" +
			"Abraços,\nEquipe",
	},
	IntentCompletePayment: {
		Subject: "Falta pouco! Finalize seu pagamento",
		Body: "Olá {name},\n\n" +
			"Seu pagamento ainda está pendente. Finalize agora para ativar sua " +
			"assinatura e liberar todos os recursos do seu plano.\n\n" +
			"Se tiver qualquer problema com o pagamento, estamos aqui para ajudar.\n\n" +
			"Abraços,\nEquipe",
	},
}

// BuiltinIntents lists the catalog keys in display order.
func BuiltinIntents() []string {
	return []string{IntentCompleteProfile, IntentChoosePlan, IntentCompletePayment}
}

// RenderBuiltin renders a catalog template for one journey record,
// replacing every {name} occurrence with the user's full name, or the email
// address when the name is empty. No other token is touched.
func RenderBuiltin(intent string, record *models.UserJourneyRecord) (subject, body string, err error) {
	tpl, ok := builtinTemplates[intent]
	if !ok {
		return "", "", fmt.Errorf("unknown reminder intent %q", intent)
	}
	name := record.DisplayName()
	return strings.ReplaceAll(tpl.Subject, "{name}", name),
		strings.ReplaceAll(tpl.Body, "{name}", name),
		nil
}

// ComposeReminder resolves the final subject and message for a dispatch.
// Custom reminders require both fields; built-in intents derive them from
// the catalog and are never empty.
func ComposeReminder(intent string, record *models.UserJourneyRecord, customSubject, customMessage string) (subject, message string, err error) {
	if intent == IntentCustom {
		if strings.TrimSpace(customSubject) == "" || strings.TrimSpace(customMessage) == "" {
			return "", "", ErrMissingFields
		}
		return customSubject, customMessage, nil
	}
	return RenderBuiltin(intent, record)
}
