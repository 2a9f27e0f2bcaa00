package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/calendar"
)

// Seed is the YAML document accepted by LoadSeed. Dates are YYYY-MM-DD strings and amounts
// are decimal strings so no precision is lost in YAML float parsing.
type Seed struct {
	Units        []SeedUnit        `yaml:"units"`
	Commitments  []SeedCommitment  `yaml:"commitments"`
	Reservations []SeedReservation `yaml:"reservations"`
}

type SeedUnit struct {
	ID      string `yaml:"id"`
	OwnerID string `yaml:"owner_id"`
	Name    string `yaml:"name"`
	Active  *bool  `yaml:"active"`
}

type SeedCommitment struct {
	ID        string `yaml:"id"`
	UnitID    string `yaml:"unit_id"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Kind      string `yaml:"kind"`
	Status    string `yaml:"status"`
	Label     string `yaml:"label"`
}

type SeedFee struct {
	Name   string `yaml:"name"`
	Amount string `yaml:"amount"`
}

type SeedReservation struct {
	ID         string    `yaml:"id"`
	UnitID     string    `yaml:"unit_id"`
	CheckIn    string    `yaml:"check_in"`
	CheckOut   string    `yaml:"check_out"`
	TotalValue string    `yaml:"total_value"`
	Fees       []SeedFee `yaml:"fees"`
	Platform   string    `yaml:"platform"`
	Status     string    `yaml:"status"`
	Guests     int       `yaml:"guests"`
}

// LoadSeedFile reads a YAML seed from path into s.
func (s *Store) LoadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	if err := s.LoadSeed(data); err != nil {
		return fmt.Errorf("seed file %s: %w", path, err)
	}
	return nil
}

// LoadSeed parses a YAML seed document and loads it. Commitments go through SaveCommitment,
// so an overlapping seed is rejected the same way a live write would be.
func (s *Store) LoadSeed(data []byte) error {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed YAML: %w", err)
	}

	for _, su := range seed.Units {
		if su.ID == "" {
			return fmt.Errorf("unit without id")
		}
		active := true
		if su.Active != nil {
			active = *su.Active
		}
		s.PutUnit(booking.Unit{ID: su.ID, OwnerID: su.OwnerID, Name: su.Name, Active: active})
	}

	for _, sc := range seed.Commitments {
		c, err := sc.toCommitment()
		if err != nil {
			return fmt.Errorf("commitment %s: %w", sc.ID, err)
		}
		if err := s.SaveCommitment(context.Background(), &c); err != nil {
			return fmt.Errorf("commitment %s: %w", sc.ID, err)
		}
	}

	for _, sr := range seed.Reservations {
		r, err := sr.toReservation()
		if err != nil {
			return fmt.Errorf("reservation %s: %w", sr.ID, err)
		}
		s.PutReservation(r)
	}

	slog.Info("[Memory] Seed loaded",
		"units", len(seed.Units),
		"commitments", len(seed.Commitments),
		"reservations", len(seed.Reservations))
	return nil
}

func (sc SeedCommitment) toCommitment() (booking.Commitment, error) {
	interval, err := parseInterval(sc.StartDate, sc.EndDate)
	if err != nil {
		return booking.Commitment{}, err
	}
	kind, err := booking.ParseKind(defaultString(sc.Kind, string(booking.KindStay)))
	if err != nil {
		return booking.Commitment{}, err
	}
	status, err := booking.ParseStatus(defaultString(sc.Status, string(booking.StatusConfirmed)))
	if err != nil {
		return booking.Commitment{}, err
	}
	return booking.Commitment{
		ID:       sc.ID,
		UnitID:   sc.UnitID,
		Interval: interval,
		Kind:     kind,
		Status:   status,
		Label:    sc.Label,
	}, nil
}

func (sr SeedReservation) toReservation() (booking.MonetaryReservation, error) {
	interval, err := parseInterval(sr.CheckIn, sr.CheckOut)
	if err != nil {
		return booking.MonetaryReservation{}, err
	}
	value, err := decimal.NewFromString(sr.TotalValue)
	if err != nil {
		return booking.MonetaryReservation{}, fmt.Errorf("invalid total_value %q: %w", sr.TotalValue, err)
	}
	status, err := booking.ParseStatus(defaultString(sr.Status, string(booking.StatusConfirmed)))
	if err != nil {
		return booking.MonetaryReservation{}, err
	}

	r := booking.MonetaryReservation{
		ID:         sr.ID,
		UnitID:     sr.UnitID,
		Interval:   interval,
		TotalValue: value,
		Platform:   defaultString(sr.Platform, "direct"),
		Status:     status,
		Guests:     sr.Guests,
	}
	for _, f := range sr.Fees {
		amount, err := decimal.NewFromString(f.Amount)
		if err != nil {
			return booking.MonetaryReservation{}, fmt.Errorf("invalid fee %s amount %q: %w", f.Name, f.Amount, err)
		}
		r.Fees = append(r.Fees, booking.FeeComponent{Name: f.Name, Amount: amount})
	}
	return r, nil
}

func parseInterval(start, end string) (calendar.Interval, error) {
	s, err := calendar.ParseDate(start)
	if err != nil {
		return calendar.Interval{}, err
	}
	e, err := calendar.ParseDate(end)
	if err != nil {
		return calendar.Interval{}, err
	}
	return calendar.NewInterval(s, e), nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
