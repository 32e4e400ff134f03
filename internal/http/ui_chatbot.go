package httpx

import (
	"net/http"
	"strings"
	"unicode/utf8"

	apperrors "github.com/minboot/ats-web/internal/errors"
)

const maxChatMessage = 1000

// ChatExchange is one question and answer rendered into the chat widget.
type ChatExchange struct {
	Question string
	// Answer is markdown as returned by the assistant.
	Answer   string
	Fallback bool
}

// AskChatbot forwards a question to the assistant and renders the exchange. Any failure
// other than an expired session shows the fallback text in place of an answer.
func (h *UIHandlers) AskChatbot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	question := strings.TrimSpace(r.PostFormValue("message"))
	if question == "" {
		HTMX(w).Discard()
		return
	}
	if utf8.RuneCountInString(question) > maxChatMessage {
		question = string([]rune(question)[:maxChatMessage])
	}

	answer, err := visitor(r).Client.Ask(r.Context(), question)
	ex := ChatExchange{Question: question, Answer: answer}
	if err != nil {
		switch {
		case apperrors.IsCanceled(err):
			return
		case apperrors.IsUnauthorized(err):
			h.handleFailure(w, r, err)
			return
		}
		h.logger().WarnContext(r.Context(), "chatbot ask failed", "error", err)
		ex.Answer, ex.Fallback = MsgChatbotFallback, true
	}
	if strings.TrimSpace(ex.Answer) == "" {
		ex.Answer, ex.Fallback = MsgChatbotFallback, true
	}
	h.renderFragment(w, r, "chat-exchange", ex)
}
