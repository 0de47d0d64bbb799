package otp

import (
	"github.com/xlzd/gotp"
)

// Generator produces short numeric codes for email verification and
// death verification rounds.
type Generator interface {
	RandomCode(length int) string
}

type GOTPGenerator struct{}

func NewGOTPGenerator() *GOTPGenerator {
	return &GOTPGenerator{}
}

func (g *GOTPGenerator) RandomCode(length int) string {
	secret := gotp.RandomSecret(16)
	return gotp.NewTOTP(secret, length, 30, nil).Now()
}
