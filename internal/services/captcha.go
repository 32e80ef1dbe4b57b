package services

import (
	"fmt"
	"math/rand"
	"time"
)

// CaptchaService hands out small arithmetic questions for the signup
// form. The answer lives in the session, so no captcha state is stored
// server-side beyond the cookie.
type CaptchaService struct {
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	return &CaptchaService{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Question returns a display string like "3 + 5" and its answer.
func (s *CaptchaService) Question() (string, int) {
	a := s.rnd.Intn(10)
	b := s.rnd.Intn(10)

	if s.rnd.Intn(2) == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	// Keep subtraction results non-negative.
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}
