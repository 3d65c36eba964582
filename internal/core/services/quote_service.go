package services

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/core/domain"
)

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Date   string `json:"date,omitempty"`
}

// QuoteCache stores the quote of a day until that day ends.
type QuoteCache interface {
	GetQuote(ctx context.Context, date string) (*Quote, error)
	SetQuote(ctx context.Context, q Quote, ttl time.Duration) error
}

var quotes = []Quote{
	{Text: "We are what we repeatedly do. Excellence, then, is not an act, but a habit.", Author: "Aristotle"},
	{Text: "Small daily improvements over time lead to stunning results.", Author: "Robin Sharma"},
	{Text: "The secret of getting ahead is getting started.", Author: "Mark Twain"},
	{Text: "Success is the sum of small efforts repeated day in and day out.", Author: "Robert Collier"},
	{Text: "Motivation is what gets you started. Habit is what keeps you going.", Author: "Jim Ryun"},
	{Text: "You don't rise to the level of your goals, you fall to the level of your systems.", Author: "James Clear"},
	{Text: "The chains of habit are too light to be felt until they are too heavy to be broken.", Author: "Warren Buffett"},
	{Text: "First forget inspiration. Habit is more dependable.", Author: "Octavia Butler"},
	{Text: "A year from now you may wish you had started today.", Author: "Karen Lamb"},
	{Text: "Each day is a new beginning. Take a deep breath and start again.", Author: "Unknown"},
	{Text: "Progress, not perfection, is the goal.", Author: "Joyce Meyer"},
	{Text: "The only way to do great work is to love what you do.", Author: "Steve Jobs"},
	{Text: "Discipline is choosing between what you want now and what you want most.", Author: "Abraham Lincoln"},
	{Text: "Every action you take is a vote for the type of person you wish to become.", Author: "James Clear"},
	{Text: "Consistency is the key to achieving and maintaining momentum.", Author: "Darren Hardy"},
	{Text: "Your future is created by what you do today, not tomorrow.", Author: "Robert Kiyosaki"},
	{Text: "It does not matter how slowly you go as long as you do not stop.", Author: "Confucius"},
	{Text: "The best time to plant a tree was 20 years ago. The second best time is now.", Author: "Chinese Proverb"},
	{Text: "Hard work beats talent when talent fails to work hard.", Author: "Kevin Durant"},
	{Text: "Energy and persistence conquer all things.", Author: "Benjamin Franklin"},
	{Text: "The journey of a thousand miles begins with one step.", Author: "Lao Tzu"},
	{Text: "Believe you can and you're halfway there.", Author: "Theodore Roosevelt"},
	{Text: "What you do every day matters more than what you do once in a while.", Author: "Gretchen Rubin"},
	{Text: "Be consistent. The real key to success in any area.", Author: "Dwayne Johnson"},
	{Text: "Make it so easy you can't say no. Even a 2-min version counts.", Author: "James Clear"},
	{Text: "Don't count the days, make the days count.", Author: "Muhammad Ali"},
	{Text: "The difference between who you are and who you want to be is what you do.", Author: "Unknown"},
	{Text: "Show up, do the work, then let it go. Repeat.", Author: "Unknown"},
	{Text: "Action is the foundational key to all success.", Author: "Pablo Picasso"},
	{Text: "Take care of your body. It's the only place you have to live.", Author: "Jim Rohn"},
}

type QuoteService struct {
	cache  QuoteCache
	clock  domain.Clock
	logger *zap.Logger
}

// NewQuoteService works without a cache; pass nil to disable it.
func NewQuoteService(cache QuoteCache, clock domain.Clock, logger *zap.Logger) *QuoteService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{cache: cache, clock: clock, logger: logger}
}

// DailyQuoteIndex picks the quote of a date: a 31-multiplier string hash
// over "YYYY-MM-DD", wrapping at 32 bits.
func DailyQuoteIndex(date string, n int) int {
	var h uint32
	for i := 0; i < len(date); i++ {
		h = h*31 + uint32(date[i])
	}
	return int(h % uint32(n))
}

// Today returns the same quote for every caller during a calendar day.
func (s *QuoteService) Today(ctx context.Context) Quote {
	now := s.clock.Now()
	date := domain.DateOf(now).String()

	if s.cache != nil {
		cached, err := s.cache.GetQuote(ctx, date)
		if err != nil {
			s.logger.Warn("Quote cache read failed", zap.Error(err))
		} else if cached != nil {
			return *cached
		}
	}

	q := quotes[DailyQuoteIndex(date, len(quotes))]
	q.Date = date

	if s.cache != nil {
		midnight := domain.DateOf(now).AddDays(1).In(now.Location())
		if err := s.cache.SetQuote(ctx, q, midnight.Sub(now)); err != nil {
			s.logger.Warn("Quote cache write failed", zap.Error(err))
		}
	}
	return q
}

func (s *QuoteService) Random() Quote {
	return quotes[rand.IntN(len(quotes))]
}
