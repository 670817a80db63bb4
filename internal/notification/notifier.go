package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/wneessen/go-mail"
)

const DefaultTimeout = 10 * time.Second

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Admin    string
	Timeout  time.Duration
}

// Configured reports whether SMTP credentials are present.
func (c Config) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// Sender delivers messages, *mail.Client is the production implementation.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Option func(*SMTPNotifier)

func WithSender(sender Sender) Option {
	return func(n *SMTPNotifier) {
		n.sender = sender
	}
}

// SMTPNotifier sends order emails. Failures are logged and reported as false.
type SMTPNotifier struct {
	cfg    Config
	engine *Engine
	sender Sender
	logger *slog.Logger
}

var _ port.Notifier = (*SMTPNotifier)(nil)

func New(cfg Config, logger *slog.Logger, opts ...Option) (*SMTPNotifier, error) {
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	engine, err := NewEngine()
	if err != nil {
		return nil, fmt.Errorf("NewEngine: %w", err)
	}

	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Admin == "" {
		cfg.Admin = cfg.Username
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	n := &SMTPNotifier{
		cfg:    cfg,
		engine: engine,
		logger: logger,
	}

	for _, opt := range opts {
		opt(n)
	}

	if !cfg.Configured() {
		logger.Warn("email notifications disabled, set SMTP_USERNAME and SMTP_PASSWORD")
		return n, nil
	}

	if n.sender == nil {
		client, err := mail.NewClient(cfg.Host,
			mail.WithPort(cfg.Port),
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
			mail.WithTimeout(cfg.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("mail.NewClient: %w", err)
		}
		n.sender = client
	}

	return n, nil
}

func (n *SMTPNotifier) SendOrderConfirmation(ctx context.Context, order domain.Order, customerEmail string) bool {
	logger := n.logger.With("method", "SendOrderConfirmation", "order_id", order.ID)

	if !n.cfg.Configured() {
		logger.Warn("email not configured, skipping order confirmation")
		return false
	}

	subject := fmt.Sprintf("Order Confirmation - #%d", order.ID)

	return n.send(ctx, logger, customerEmail, subject, confirmationTemplate, order)
}

func (n *SMTPNotifier) SendAdminNotification(ctx context.Context, order domain.Order) bool {
	logger := n.logger.With("method", "SendAdminNotification", "order_id", order.ID)

	if !n.cfg.Configured() || n.cfg.Admin == "" {
		logger.Warn("email not configured or admin email not set, skipping admin notification")
		return false
	}

	subject := fmt.Sprintf("New Order Received - #%d", order.ID)

	return n.send(ctx, logger, n.cfg.Admin, subject, adminTemplate, order)
}

func (n *SMTPNotifier) send(ctx context.Context, logger *slog.Logger, to, subject, templateName string, order domain.Order) bool {
	msg, err := n.buildMessage(to, subject, templateName, order)
	if err != nil {
		logger.Error("n.buildMessage", "err", err)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		logger.Error("failed to send email", "to", to, "err", err)
		return false
	}

	logger.Info("email sent", "to", to)
	return true
}

func (n *SMTPNotifier) buildMessage(to, subject, templateName string, order domain.Order) (*mail.Msg, error) {
	body, err := n.engine.Render(templateName, order)
	if err != nil {
		return nil, fmt.Errorf("engine.Render: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("msg.From: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("msg.To: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	return msg, nil
}
