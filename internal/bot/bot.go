// Package bot imports restaurants shared as links in a group chat.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nitesh/gastronomos/internal/extract"
	"github.com/nitesh/gastronomos/internal/metrics"
	"github.com/nitesh/gastronomos/internal/service"
	"github.com/nitesh/gastronomos/pkg/models"
)

const (
	ReactionEmoji       = "🍽️"
	DefaultDashboardURL = "gastronomo-web.vercel.app/dashboard"
)

// Outcome describes what HandleMessage did with a message.
type Outcome string

const (
	OutcomeIgnored      Outcome = "ignored"
	OutcomeNoRestaurant Outcome = "no_restaurant"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeImported     Outcome = "imported"
	OutcomeError        Outcome = "error"
)

// Message is an inbound chat message as delivered by the messaging bridge.
type Message struct {
	ID       string `json:"id"`
	ChatID   string `json:"chat_id"`
	ChatName string `json:"chat_name"`
	IsGroup  bool   `json:"is_group"`
	From     string `json:"from"`
	Author   string `json:"author,omitempty"`
	FromMe   bool   `json:"from_me"`
	Body     string `json:"body"`
}

// Sender returns the address of the member who wrote the message.
func (m Message) Sender() string {
	if m.Author != "" {
		return m.Author
	}
	return m.From
}

// Transport sends replies and reactions back to the chat.
type Transport interface {
	Reply(ctx context.Context, chatID, text string) error
	React(ctx context.Context, msg Message, emoji string) error
}

// Importer is the slice of the service the bot drives.
type Importer interface {
	DetectInMessage(ctx context.Context, text string) *extract.Detection
	ResolveUser(ctx context.Context, phone string) (*models.User, error)
	ImportCandidate(ctx context.Context, cand *models.Candidate, userID string) (*models.Restaurant, error)
}

type Config struct {
	GroupName    string
	BotUserID    string
	DashboardURL string
}

type Bot struct {
	importer  Importer
	transport Transport
	cfg       Config
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
}

func New(importer Importer, transport Transport, cfg Config, log logrus.FieldLogger, m *metrics.Metrics) *Bot {
	if cfg.DashboardURL == "" {
		cfg.DashboardURL = DefaultDashboardURL
	}
	return &Bot{
		importer:  importer,
		transport: transport,
		cfg:       cfg,
		log:       log.WithField("component", "bot"),
		metrics:   m,
	}
}

// HandleMessage imports the first restaurant linked in a group message.
// Messages from other chats, from the bot itself, or without text are
// ignored. Reactions and replies are best-effort.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) (outcome Outcome, err error) {
	defer func() { b.metrics.ObserveBotImport(string(outcome)) }()

	if !msg.IsGroup || msg.ChatName != b.cfg.GroupName || msg.FromMe || strings.TrimSpace(msg.Body) == "" {
		return OutcomeIgnored, nil
	}
	log := b.log.WithFields(logrus.Fields{"chat": msg.ChatName, "sender": msg.Sender()})
	log.WithField("preview", preview(msg.Body, 80)).Debug("message received")

	detected := b.importer.DetectInMessage(ctx, msg.Body)
	if detected == nil || !detected.Info.Named() {
		return OutcomeNoRestaurant, nil
	}
	info := detected.Info
	log = log.WithFields(logrus.Fields{"url": detected.URL, "name": info.Name})
	log.Info("restaurant detected")

	sender, err := b.importer.ResolveUser(ctx, msg.Sender())
	if err != nil {
		log.WithError(err).Warn("sender lookup failed")
	}
	userID := b.cfg.BotUserID
	authorName := "alguien"
	if sender != nil {
		userID = sender.ID
		authorName = sender.Name
	}

	r, err := b.importer.ImportCandidate(ctx, info, userID)
	switch {
	case errors.Is(err, service.ErrDuplicate):
		log.Info("restaurant already exists")
		return OutcomeDuplicate, nil
	case err != nil:
		return OutcomeError, fmt.Errorf("import %q: %w", info.Name, err)
	}
	log.WithFields(logrus.Fields{"id": r.ID, "user_id": userID}).Info("restaurant imported")

	if err := b.transport.React(ctx, msg, ReactionEmoji); err != nil {
		log.WithError(err).Debug("reaction failed")
	}
	if err := b.transport.Reply(ctx, msg.ChatID, b.confirmation(r, authorName)); err != nil {
		log.WithError(err).Warn("confirmation reply failed")
	}
	return OutcomeImported, nil
}

func (b *Bot) confirmation(r *models.Restaurant, authorName string) string {
	address := r.Address
	if address == "" {
		address = "Sin dirección"
	}
	return fmt.Sprintf("✅ *%s* añadido a Gastrónomos por %s!\n📍 %s\n🌐 %s", r.Name, authorName, address, b.cfg.DashboardURL)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
