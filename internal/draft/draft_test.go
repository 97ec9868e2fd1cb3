package draft_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/draft"
)

var due = time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

func TestRenderOverdueFirmWhatsApp(t *testing.T) {
	d := draft.Render(draft.Input{
		Scenario:      draft.ScenarioOverdue,
		Tone:          draft.ToneFirm,
		Channel:       draft.ChannelWhatsApp,
		ClientName:    "Ahmet Yılmaz",
		Phone:         "", // even a missing phone is reported masked
		NextDueDate:   due,
		OverdueAmount: 1250.5,
	})

	assert.LessOrEqual(t, utf8.RuneCountInString(d.Text), 500)
	assert.Contains(t, d.Text, "Aksi durumda kaydınız askıya alınabilir.")
	assert.Contains(t, d.Text, "Ahmet Y.")
	assert.NotContains(t, d.Text, "Yılmaz", "surname must be masked")
	assert.Contains(t, d.Text, "1.250,50 TL")
	assert.Contains(t, d.Text, "05.06.2025")
	assert.Contains(t, d.MaskedFields, "phone")
	assert.Contains(t, d.MaskedFields, "name")
	assert.NotEmpty(t, d.Reasons)
}

func TestRenderScenarioBodies(t *testing.T) {
	base := draft.Input{
		Tone:          draft.ToneStandard,
		Channel:       draft.ChannelTelegram,
		ClientName:    "Ayşe Demir",
		Phone:         "+90 532 111 22 33",
		NextDueDate:   due,
		NextDueAmount: 500,
		OverdueAmount: 200,
		TotalPaid:     300,
		Remaining:     700,
	}
	tests := []struct {
		scenario draft.Scenario
		contains string
	}{
		{draft.ScenarioOverdue, "gecikmiş görünüyor"},
		{draft.ScenarioTodayDue, "vadesi bugün"},
		{draft.ScenarioUpcoming, "05.06.2025 tarihinde"},
		{draft.ScenarioPartialFollowup, "kalan bakiyeniz 700,00 TL"},
	}
	for _, tt := range tests {
		t.Run(string(tt.scenario), func(t *testing.T) {
			in := base
			in.Scenario = tt.scenario
			d := draft.Render(in)
			assert.Contains(t, d.Text, tt.contains)
			assert.LessOrEqual(t, utf8.RuneCountInString(d.Text), 800)
		})
	}
}

func TestRenderFallbackPhrasings(t *testing.T) {
	t.Run("zero overdue amount", func(t *testing.T) {
		d := draft.Render(draft.Input{
			Scenario:   draft.ScenarioOverdue,
			Tone:       draft.ToneSoft,
			Channel:    draft.ChannelWhatsApp,
			ClientName: "Mehmet Kaya",
		})
		assert.Contains(t, d.Text, "vadesi geçmiş bakiye")
		assert.NotContains(t, d.Text, "TL")
	})
	t.Run("missing date renders generic phrase", func(t *testing.T) {
		d := draft.Render(draft.Input{
			Scenario:      draft.ScenarioOverdue,
			Tone:          draft.ToneStandard,
			Channel:       draft.ChannelTelegram,
			ClientName:    "Mehmet Kaya",
			OverdueAmount: 100,
		})
		assert.Contains(t, d.Text, "belirtilen tarihte")
	})
	t.Run("empty name falls back to generic label", func(t *testing.T) {
		d := draft.Render(draft.Input{
			Scenario: draft.ScenarioUpcoming,
			Tone:     draft.ToneStandard,
			Channel:  draft.ChannelTelegram,
		})
		assert.Contains(t, d.Text, "Değerli Müşterimiz")
		assert.Contains(t, d.MaskedFields, "name")
	})
}

func TestRenderTruncation(t *testing.T) {
	d := draft.Render(draft.Input{
		Scenario:      draft.ScenarioOverdue,
		Tone:          draft.ToneFirm,
		Channel:       draft.ChannelWhatsApp,
		ClientName:    strings.Repeat("Ab", 300), // single token passes through unmasked
		OverdueAmount: 100,
		NextDueDate:   due,
	})
	assert.Equal(t, 500, utf8.RuneCountInString(d.Text))
	assert.True(t, strings.HasSuffix(d.Text, "…"))
}

func TestMaskName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two tokens", "Ahmet Yılmaz", "Ahmet Y."},
		{"three tokens keeps first and last initial", "Ali Rıza Öztürk", "Ali Ö."},
		{"single token passes through", "Zeynep", "Zeynep"},
		{"empty falls back", "", "Değerli Müşterimiz"},
		{"whitespace only", "   ", "Değerli Müşterimiz"},
		{"lowercase surname initial uppercased", "ali veli", "ali V."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, draft.MaskName(tt.in))
		})
	}
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"international", "+905321112233", "+90 5XX XXX XX XX"},
		{"spaced", "+90 532 111 22 33", "+90 5XX XXX XX XX"},
		{"leading zero", "05321112233", "+90 5XX XXX XX XX"},
		{"bare subscriber", "5321112233", "+90 5XX XXX XX XX"},
		{"landline", "02121234567", "+90 2XX XXX XX XX"},
		{"empty", "", "+90 XXX XXX XX XX"},
		{"garbage", "not-a-phone", "+90 XXX XXX XX XX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, draft.MaskPhone(tt.in))
		})
	}
}

func TestMaskingDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, "Ahmet Y.", draft.MaskName("Ahmet Yılmaz"))
		assert.Equal(t, "+90 5XX XXX XX XX", draft.MaskPhone("+905321112233"))
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.250,50 TL", draft.FormatAmount(1250.5))
	assert.Equal(t, "0,00 TL", draft.FormatAmount(-10))
	assert.Equal(t, "12.345.678,90 TL", draft.FormatAmount(12345678.9))
}
