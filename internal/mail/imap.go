package mail

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	"github.com/sirupsen/logrus"

	"opportunity-sync-go/internal/config"
	"opportunity-sync-go/internal/formatter"
)

// IMAPSource implements Source over a plain IMAP mailbox. The label maps
// to a mailbox name and threads are reconstructed by normalized subject,
// since IMAP has no native thread objects.
type IMAPSource struct {
	client     *client.Client
	maxThreads int
}

// NewIMAPSource connects and logs in to the configured IMAP server.
func NewIMAPSource(cfg *config.GoogleConfig, maxThreads int) (*IMAPSource, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(cfg.IMAPUser, cfg.IMAPPassword); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	if maxThreads <= 0 {
		maxThreads = DefaultMaxThreads
	}

	return &IMAPSource{client: c, maxThreads: maxThreads}, nil
}

// SearchThreads searches the mailbox named by the filter's label (INBOX
// when empty) and groups matching messages into threads.
func (s *IMAPSource) SearchThreads(ctx context.Context, filter Filter) ([]Thread, error) {
	mailbox := filter.Label
	if mailbox == "" {
		mailbox = "INBOX"
	}

	if _, err := s.client.Select(mailbox, true); err != nil {
		return nil, &SearchError{Err: fmt.Errorf("failed to select %s: %w", mailbox, err)}
	}

	criteria := imap.NewSearchCriteria()
	if !filter.After.IsZero() {
		criteria.Since = filter.After
	}
	if !filter.Before.IsZero() {
		criteria.Before = filter.Before
	}
	if filter.FromEmail != "" {
		criteria.Header.Add("From", filter.FromEmail)
	} else if filter.FromDomain != "" {
		// HEADER FROM is a substring match, so the bare domain works as a
		// wildcard over all senders from that domain.
		criteria.Header.Add("From", "@"+filter.FromDomain)
	}

	uids, err := s.client.Search(criteria)
	if err != nil {
		return nil, &SearchError{Err: fmt.Errorf("failed to search messages: %w", err)}
	}

	if len(uids) == 0 {
		return []Thread{}, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- s.client.Fetch(seqset, items, messages)
	}()

	var parsed []Message
	for msg := range messages {
		m, err := s.parseMessage(msg, section)
		if err != nil {
			logrus.Warnf("Failed to parse IMAP message: %v", err)
			continue
		}
		parsed = append(parsed, m)
	}

	if err := <-done; err != nil {
		return nil, &SearchError{Err: fmt.Errorf("failed to fetch messages: %w", err)}
	}

	return s.groupIntoThreads(parsed), nil
}

// parseMessage normalizes one fetched IMAP message.
func (s *IMAPSource) parseMessage(msg *imap.Message, section *imap.BodySectionName) (Message, error) {
	m := Message{}

	if msg.Envelope != nil {
		m.Subject = msg.Envelope.Subject
		m.Date = msg.Envelope.Date
		if len(msg.Envelope.From) > 0 {
			m.From = msg.Envelope.From[0].Address()
		}
		if len(msg.Envelope.To) > 0 {
			addrs := make([]string, 0, len(msg.Envelope.To))
			for _, a := range msg.Envelope.To {
				addrs = append(addrs, a.Address())
			}
			m.To = strings.Join(addrs, ", ")
		}
	}
	m.DateFormatted = formatter.DisplayDate(m.Date)

	r := msg.GetBody(section)
	if r == nil {
		return m, fmt.Errorf("failed to get message body")
	}

	entity, err := message.Read(r)
	if err != nil {
		return m, fmt.Errorf("failed to read message: %w", err)
	}

	if mr := entity.MultipartReader(); mr != nil {
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return m, fmt.Errorf("failed to read part: %w", err)
			}

			contentType := p.Header.Get("Content-Type")
			if strings.Contains(contentType, "text/plain") {
				content, err := io.ReadAll(p.Body)
				if err != nil {
					return m, fmt.Errorf("failed to read part body: %w", err)
				}
				m.Body = string(content)
			}
		}
	} else {
		content, err := io.ReadAll(entity.Body)
		if err != nil {
			return m, fmt.Errorf("failed to read message body: %w", err)
		}
		m.Body = string(content)
	}

	return m, nil
}

// groupIntoThreads buckets messages by normalized subject, ordering
// messages within a thread and threads by their first message date.
func (s *IMAPSource) groupIntoThreads(messages []Message) []Thread {
	buckets := make(map[string][]Message)
	var order []string

	for _, m := range messages {
		key := normalizeSubject(m.Subject)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], m)
	}

	threads := make([]Thread, 0, len(order))
	for _, key := range order {
		group := buckets[key]
		sort.Slice(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })
		threads = append(threads, Thread{
			Subject:      group[0].Subject,
			MessageCount: len(group),
			Messages:     group,
		})
		if len(threads) == s.maxThreads {
			break
		}
	}

	return threads
}

// Close logs out of the IMAP server.
func (s *IMAPSource) Close() error {
	return s.client.Logout()
}

// normalizeSubject strips reply/forward prefixes for thread grouping.
func normalizeSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for {
		lower := strings.ToLower(s)
		switch {
		case strings.HasPrefix(lower, "re:"):
			s = strings.TrimSpace(s[3:])
		case strings.HasPrefix(lower, "fwd:"):
			s = strings.TrimSpace(s[4:])
		case strings.HasPrefix(lower, "fw:"):
			s = strings.TrimSpace(s[3:])
		default:
			return strings.ToLower(s)
		}
	}
}
