package draft

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/models"
)

// Scenario selects the body template of an outreach message.
type Scenario string

const (
	ScenarioOverdue         Scenario = "overdue"
	ScenarioTodayDue        Scenario = "today_due"
	ScenarioUpcoming        Scenario = "upcoming"
	ScenarioPartialFollowup Scenario = "partial_followup"
)

// Valid reports whether s is a known scenario.
func (s Scenario) Valid() bool {
	switch s {
	case ScenarioOverdue, ScenarioTodayDue, ScenarioUpcoming, ScenarioPartialFollowup:
		return true
	}
	return false
}

// Tone selects the ask/close phrase pair.
type Tone string

const (
	ToneSoft     Tone = "soft"
	ToneStandard Tone = "standard"
	ToneFirm     Tone = "firm"
)

// Valid reports whether t is a known tone.
func (t Tone) Valid() bool {
	switch t {
	case ToneSoft, ToneStandard, ToneFirm:
		return true
	}
	return false
}

// Channel bounds the rendered message length.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelTelegram Channel = "telegram"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelWhatsApp, ChannelTelegram:
		return true
	}
	return false
}

const (
	maxLenWhatsApp = 500
	maxLenTelegram = 800

	genericName  = "Değerli Müşterimiz"
	genericPhone = "+90 XXX XXX XX XX"
	genericDate  = "belirtilen tarihte"
)

var trPrinter = message.NewPrinter(language.Turkish)

// Input carries everything a draft is rendered from. Amounts the scenario
// does not use may be zero; zero dates render as a generic phrase.
type Input struct {
	Scenario      Scenario  `json:"scenario"`
	Tone          Tone      `json:"tone"`
	Channel       Channel   `json:"channel"`
	ClientName    string    `json:"client_name"`
	Phone         string    `json:"phone"`
	NextDueDate   time.Time `json:"next_due_date,omitempty"`
	NextDueAmount float64   `json:"next_due_amount"`
	OverdueAmount float64   `json:"overdue_amount"`
	TotalPaid     float64   `json:"total_paid"`
	Remaining     float64   `json:"remaining"`
}

// Render builds a PII-masked outreach message. It never fails: unknown
// enum values fall back to the standard tone and the upcoming body, and
// missing inputs render as generic phrases. Callers validate enums at the
// boundary when a hard rejection is wanted.
func Render(in Input) models.MessageDraft {
	name := MaskName(in.ClientName)
	phone := MaskPhone(in.Phone)

	masked := []string{}
	if name != in.ClientName {
		masked = append(masked, "name")
	}
	masked = append(masked, "phone")

	bodyText := renderBody(in, name)
	ask, closing := tonePhrases(in.Tone)
	text := bodyText + " " + ask + " " + closing

	limit := maxLenTelegram
	if in.Channel == ChannelWhatsApp {
		limit = maxLenWhatsApp
	}
	text = truncate(text, limit)

	return models.MessageDraft{
		Text:         text,
		MaskedFields: masked,
		Reasons: []string{
			fmt.Sprintf("scenario: %s", in.Scenario),
			fmt.Sprintf("tone: %s", in.Tone),
			fmt.Sprintf("channel: %s (limit %d)", in.Channel, limit),
			fmt.Sprintf("masked phone: %s", phone),
		},
	}
}

func renderBody(in Input, name string) string {
	date := FormatDate(in.NextDueDate)
	switch in.Scenario {
	case ScenarioOverdue:
		if in.OverdueAmount > 0 {
			return fmt.Sprintf("Sayın %s, %s vadeli %s tutarındaki ödemeniz gecikmiş görünüyor.",
				name, date, FormatAmount(in.OverdueAmount))
		}
		return fmt.Sprintf("Sayın %s, hesabınızda vadesi geçmiş bakiye görünüyor.", name)
	case ScenarioTodayDue:
		if in.NextDueAmount > 0 {
			return fmt.Sprintf("Sayın %s, %s tutarındaki ödemenizin vadesi bugün (%s) doluyor.",
				name, FormatAmount(in.NextDueAmount), date)
		}
		return fmt.Sprintf("Sayın %s, bugün vadesi dolan bir ödemeniz bulunuyor.", name)
	case ScenarioPartialFollowup:
		if in.Remaining > 0 {
			return fmt.Sprintf("Sayın %s, bugüne kadar %s ödeme aldık; kalan bakiyeniz %s.",
				name, FormatAmount(in.TotalPaid), FormatAmount(in.Remaining))
		}
		return fmt.Sprintf("Sayın %s, ödeme planınız üzerine sizinle iletişime geçmek istedik.", name)
	default: // upcoming, and any unknown scenario
		if in.NextDueAmount > 0 {
			return fmt.Sprintf("Sayın %s, %s tarihinde %s tutarında ödemeniz bulunuyor.",
				name, date, FormatAmount(in.NextDueAmount))
		}
		return fmt.Sprintf("Sayın %s, yaklaşan bir ödemeniz bulunuyor.", name)
	}
}

func tonePhrases(t Tone) (ask, closing string) {
	switch t {
	case ToneSoft:
		return "Müsait olduğunuzda ödemenizi tamamlayabilirseniz çok seviniriz.",
			"Sağlıklı günler dileriz 🙏"
	case ToneFirm:
		return "Ödemenizin bugün içinde tamamlanması gerekmektedir.",
			"Aksi durumda kaydınız askıya alınabilir."
	default: // standard, and any unknown tone
		return "Ödemenizi en kısa sürede tamamlamanızı rica ederiz.",
			"Teşekkür eder, iyi günler dileriz."
	}
}

// MaskName reduces a full name to "First L." form. Single-token names pass
// through; empty names fall back to a generic label.
func MaskName(name string) string {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return genericName
	case 1:
		return fields[0]
	}
	last := []rune(fields[len(fields)-1])
	return fmt.Sprintf("%s %c.", fields[0], unicode.ToUpper(last[0]))
}

// MaskPhone keeps only the country code and the first subscriber digit,
// e.g. "+90 5XX XXX XX XX". Anything without a full subscriber number
// masks to a generic placeholder.
func MaskPhone(phone string) string {
	var digits []rune
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	// Normalize to the 10-digit subscriber part.
	if len(digits) > 10 && digits[0] == '9' && digits[1] == '0' {
		digits = digits[2:]
	}
	if len(digits) == 11 && digits[0] == '0' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return genericPhone
	}
	return fmt.Sprintf("+90 %cXX XXX XX XX", digits[0])
}

// FormatAmount renders a non-negative tr-TR currency string, e.g. "1.250,50 TL".
func FormatAmount(v float64) string {
	if v < 0 {
		v = 0
	}
	return trPrinter.Sprintf("%.2f TL", v)
}

// FormatDate renders DD.MM.YYYY, or a generic phrase for a missing date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return genericDate
	}
	return t.Format("02.01.2006")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
