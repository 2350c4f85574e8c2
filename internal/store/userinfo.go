package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperr "unigate/pkg/errors"
)

// UserInfo is the enrollment profile a user submits for validation.
type UserInfo struct {
	ID             string
	UserID         string
	Verified       bool
	FirstName      string
	MiddleName     string
	LastName       string
	SecondLastName string
	Sex            bool
	PhoneNumber    string
	BirthDate      string
	BirthCountry   string
	BirthState     string
	BirthCity      string
	Address        string
	CampusID       string
	CareerID       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InfoReview records one admin decision on a user's enrollment profile.
type InfoReview struct {
	ID        string
	UserID    string
	AdminID   string
	Approved  bool
	Comments  string
	CreatedAt time.Time
}

// UpsertUserInfo inserts the user's profile or replaces an existing one.
// A resubmission resets Verified to false pending a new review.
func (s *Store) UpsertUserInfo(ctx context.Context, info *UserInfo) error {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	now := time.Now()
	info.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_info(
  id, user_id, verified, first_name, middle_name, last_name, second_last_name,
  sex, phone_number, birth_date, birth_country, birth_state, birth_city,
  address, campus_id, career_id, created_at, updated_at
) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(user_id) DO UPDATE SET
  verified = 0,
  first_name = excluded.first_name,
  middle_name = excluded.middle_name,
  last_name = excluded.last_name,
  second_last_name = excluded.second_last_name,
  sex = excluded.sex,
  phone_number = excluded.phone_number,
  birth_date = excluded.birth_date,
  birth_country = excluded.birth_country,
  birth_state = excluded.birth_state,
  birth_city = excluded.birth_city,
  address = excluded.address,
  campus_id = excluded.campus_id,
  career_id = excluded.career_id,
  updated_at = excluded.updated_at`,
		info.ID, info.UserID, info.Verified,
		info.FirstName, nullable(info.MiddleName), info.LastName, nullable(info.SecondLastName),
		info.Sex, info.PhoneNumber, info.BirthDate, info.BirthCountry, info.BirthState,
		info.BirthCity, info.Address, info.CampusID, info.CareerID,
		now.Unix(), now.Unix(),
	)
	return err
}

// UserInfoByUserID fetches the profile of a user.
func (s *Store) UserInfoByUserID(ctx context.Context, userID string) (*UserInfo, error) {
	info, err := scanUserInfo(s.db.QueryRowContext(ctx, `
SELECT id, user_id, verified, first_name, middle_name, last_name, second_last_name,
       sex, phone_number, birth_date, birth_country, birth_state, birth_city,
       address, campus_id, career_id, created_at, updated_at
FROM user_info WHERE user_id = ?`, userID))
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

// PendingValidations lists profiles awaiting review, oldest first.
func (s *Store) PendingValidations(ctx context.Context) ([]UserInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, verified, first_name, middle_name, last_name, second_last_name,
       sex, phone_number, birth_date, birth_country, birth_state, birth_city,
       address, campus_id, career_id, created_at, updated_at
FROM user_info WHERE verified = 0 ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var infos []UserInfo
	for rows.Next() {
		info, err := scanUserInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, rows.Err()
}

// SetUserInfoVerified flips the verified flag on a user's profile.
func (s *Store) SetUserInfoVerified(ctx context.Context, userID string, verified bool) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE user_info SET verified = ?, updated_at = ? WHERE user_id = ?`,
		verified, time.Now().Unix(), userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// CreateInfoReview appends an admin decision to the review log.
func (s *Store) CreateInfoReview(ctx context.Context, r *InfoReview) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO info_review(id, user_id, admin_id, approved, comments, created_at)
VALUES(?,?,?,?,?,?)`,
		r.ID, r.UserID, r.AdminID, r.Approved, nullable(r.Comments), r.CreatedAt.Unix(),
	)
	return err
}

// ReviewsByUser lists review decisions for a user, newest first.
func (s *Store) ReviewsByUser(ctx context.Context, userID string) ([]InfoReview, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, admin_id, approved, comments, created_at
FROM info_review WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var reviews []InfoReview
	for rows.Next() {
		var (
			r        InfoReview
			comments sql.NullString
			approved int
			created  int64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.AdminID, &approved, &comments, &created); err != nil {
			return nil, err
		}
		r.Approved = approved != 0
		r.Comments = comments.String
		r.CreatedAt = time.Unix(created, 0)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func scanUserInfo(row rowScanner) (*UserInfo, error) {
	var (
		info           UserInfo
		middleName     sql.NullString
		secondLastName sql.NullString
		verified       int
		sex            int
		created        int64
		updated        int64
	)
	err := row.Scan(
		&info.ID, &info.UserID, &verified,
		&info.FirstName, &middleName, &info.LastName, &secondLastName,
		&sex, &info.PhoneNumber, &info.BirthDate, &info.BirthCountry,
		&info.BirthState, &info.BirthCity, &info.Address,
		&info.CampusID, &info.CareerID, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	info.Verified = verified != 0
	info.Sex = sex != 0
	info.MiddleName = middleName.String
	info.SecondLastName = secondLastName.String
	info.CreatedAt = time.Unix(created, 0)
	info.UpdatedAt = time.Unix(updated, 0)
	return &info, nil
}
