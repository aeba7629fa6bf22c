package notify

import (
	"crypto/tls"
	"errors"
	"strings"

	"github.com/mattn/go-xmpp"
)

// Config for the race-officer alert channel.
type Config struct {
	Host     string
	Jid      string
	Password string
	To       string
}

// Notifier sends one-off chat alerts to the race officer account when the
// live data feed degrades. Unconfigured notifiers refuse to send.
type Notifier struct {
	Config Config
}

// Configured reports whether the notifier has enough config to send.
func (n Notifier) Configured() bool {
	return n.Config.Jid != "" && n.Config.Password != "" && n.Config.To != ""
}

func serverName(jid string) string {
	parts := strings.Split(jid, "@")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Send delivers a chat message to the configured recipient.
func (n Notifier) Send(message string) error {
	if !n.Configured() {
		return errors.New("missing xmpp config")
	}

	host := n.Config.Host
	if host == "" {
		host = serverName(n.Config.Jid)
	}

	xmpp.DefaultConfig = tls.Config{
		InsecureSkipVerify: true,
	}

	options := xmpp.Options{
		Host:     host,
		User:     n.Config.Jid,
		Password: n.Config.Password,
		NoTLS:    true,
		StartTLS: true,
		Session:  false,
		Status:   "xa",
	}

	client, err := options.NewClient()
	if err != nil {
		return err
	}
	defer client.Close()

	_, err = client.Send(xmpp.Chat{Remote: n.Config.To, Type: "chat", Text: message})
	return err
}
