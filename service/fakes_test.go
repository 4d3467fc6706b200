package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mobistay/pkg/apperr"
	"mobistay/pkg/models"
	"mobistay/storage"
)

// fakeStorage is an in-memory storage.IStorage with the same conditional
// update semantics as the Postgres repos, so service tests exercise the
// real contention paths.
type fakeStorage struct {
	mu sync.Mutex

	users      map[string]*models.User
	profiles   map[string]*models.DriverProfile // keyed by user ID
	properties map[string]*models.Property
	bookings   map[string]*models.Booking
	rides      map[string]*models.Ride
	logs       []*models.VerificationLog

	seq int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:      map[string]*models.User{},
		profiles:   map[string]*models.DriverProfile{},
		properties: map[string]*models.Property{},
		bookings:   map[string]*models.Booking{},
		rides:      map[string]*models.Ride{},
	}
}

func (f *fakeStorage) nextID(prefix string) string {
	f.seq++
	return prefix + "-" + strconv.Itoa(f.seq)
}

func (f *fakeStorage) User() storage.IUserStorage                 { return (*fakeUserRepo)(f) }
func (f *fakeStorage) Property() storage.IPropertyStorage         { return (*fakePropertyRepo)(f) }
func (f *fakeStorage) Booking() storage.IBookingStorage           { return (*fakeBookingRepo)(f) }
func (f *fakeStorage) Ride() storage.IRideStorage                 { return (*fakeRideRepo)(f) }
func (f *fakeStorage) Verification() storage.IVerificationStorage { return (*fakeVerificationRepo)(f) }
func (f *fakeStorage) Close()                                     {}
func (f *fakeStorage) GetPool() *pgxpool.Pool                     { return nil }

// --- users ---

type fakeUserRepo fakeStorage

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	cp.ID = (*fakeStorage)(r).nextID("user")
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *fakeUserRepo) ExistsByEmailOrPhone(_ context.Context, email string, phone *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
		if phone != nil && u.Phone != nil && *u.Phone == *phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id string, upd storage.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	if upd.FirstName != nil {
		u.FirstName = upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = upd.LastName
	}
	if upd.Bio != nil {
		u.Bio = upd.Bio
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = upd.AvatarURL
	}
	if upd.Address != nil {
		u.Address = upd.Address
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id string, idStatus string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	u.IsVerified = true
	u.IDStatus = idStatus
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) appendLog(userID string, adminID *string, previous, next string, reason *string) {
	r.logs = append(r.logs, &models.VerificationLog{
		ID:             (*fakeStorage)(r).nextID("log"),
		UserID:         userID,
		AdminID:        adminID,
		PreviousStatus: previous,
		NewStatus:      next,
		Reason:         reason,
		CreatedAt:      time.Now(),
	})
}

func (r *fakeUserRepo) SubmitOwnerDocuments(_ context.Context, userID string, _ *models.OwnerProfile) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	prev := u.IDStatus
	u.IDStatus = models.IDStatusPending
	reason := "Owner documents submitted"
	r.appendLog(userID, nil, prev, u.IDStatus, &reason)
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) SubmitDriverDocuments(_ context.Context, userID, idCardURL, licenseImageURL, licenseNumber string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	if _, ok := r.profiles[userID]; !ok {
		r.profiles[userID] = &models.DriverProfile{
			ID:     (*fakeStorage)(r).nextID("driver"),
			UserID: userID,
		}
	}
	p := r.profiles[userID]
	p.IDCardURL = idCardURL
	p.LicenseImageURL = licenseImageURL
	p.LicenseNumber = licenseNumber
	prev := u.IDStatus
	u.IDStatus = models.IDStatusPending
	reason := "Driver documents submitted"
	r.appendLog(userID, nil, prev, u.IDStatus, &reason)
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) SetIdentityStatus(_ context.Context, userID, adminID, newStatus string, isVerified bool, reason *string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	prev := u.IDStatus
	u.IDStatus = newStatus
	if isVerified {
		u.IsVerified = true
	} else if newStatus == models.IDStatusRejected {
		u.IsVerified = false
	}
	r.appendLog(userID, &adminID, prev, newStatus, reason)
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetDriverProfile(_ context.Context, userID string) (*models.DriverProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperr.NotFound("driver profile not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeUserRepo) GetDriverProfileByID(_ context.Context, profileID string) (*models.DriverProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.ID == profileID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("driver profile not found")
}

func (r *fakeUserRepo) UpdateVehicle(_ context.Context, userID string, vehicle models.Vehicle) (*models.DriverProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperr.NotFound("driver profile not found")
	}
	p.VehicleModel = &vehicle.Model
	p.VehiclePlate = &vehicle.Plate
	p.VehicleColor = &vehicle.Color
	p.VehicleType = &vehicle.Type
	p.LicenseNumber = vehicle.LicenseNumber
	cp := *p
	return &cp, nil
}

func (r *fakeUserRepo) SetDriverOnline(_ context.Context, userID string, online bool) (*models.DriverProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperr.NotFound("driver profile not found")
	}
	p.IsOnline = online
	cp := *p
	return &cp, nil
}

// --- properties ---

type fakePropertyRepo fakeStorage

func (r *fakePropertyRepo) Create(_ context.Context, property *models.Property) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *property
	cp.ID = (*fakeStorage)(r).nextID("prop")
	cp.CreatedAt = time.Now()
	r.properties[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakePropertyRepo) GetByID(_ context.Context, id string) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return nil, apperr.NotFound("property not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakePropertyRepo) ListForOwner(_ context.Context, ownerID string) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Property
	for _, p := range r.properties {
		if p.OwnerID == ownerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) SetAvailability(_ context.Context, id string, isActive bool, blockedDates []time.Time) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return nil, apperr.NotFound("property not found")
	}
	p.IsActive = isActive
	p.BlockedDates = blockedDates
	cp := *p
	return &cp, nil
}

func (r *fakePropertyRepo) Search(_ context.Context, filter storage.PropertyFilter, limit int) ([]*models.PropertyView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var views []*models.PropertyView
	for _, p := range r.properties {
		if !p.IsActive {
			continue
		}
		owner, ok := r.users[p.OwnerID]
		if !ok || !owner.IsVerified {
			continue
		}
		if filter.City != nil && p.City != *filter.City {
			continue
		}
		if filter.PriceMin != nil && p.PricePerNight < *filter.PriceMin {
			continue
		}
		if filter.PriceMax != nil && p.PricePerNight > *filter.PriceMax {
			continue
		}
		cp := *p
		views = append(views, &models.PropertyView{
			Property:       cp,
			OwnerFirstName: owner.FirstName,
			OwnerAvatarURL: owner.AvatarURL,
		})
		if len(views) == limit {
			break
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	return views, nil
}

func (r *fakePropertyRepo) CountActiveForOwner(_ context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, p := range r.properties {
		if p.OwnerID == ownerID && p.IsActive {
			count++
		}
	}
	return count, nil
}

// --- bookings ---

type fakeBookingRepo fakeStorage

func overlapsConfirmed(bookings map[string]*models.Booking, propertyID, excludeID string, checkIn, checkOut time.Time) bool {
	for _, b := range bookings {
		if b.PropertyID != propertyID || b.ID == excludeID || b.Status != models.BookingConfirmed {
			continue
		}
		if b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			return true
		}
	}
	return false
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *models.Booking) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *booking
	cp.ID = (*fakeStorage)(r).nextID("booking")
	cp.CreatedAt = time.Now()
	r.bookings[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperr.NotFound("booking not found")
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) HasConfirmedOverlap(_ context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return overlapsConfirmed(r.bookings, propertyID, "", checkIn, checkOut), nil
}

func (r *fakeBookingRepo) ConfirmIfAvailable(_ context.Context, bookingID, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.Status != models.BookingPending {
		return false, nil
	}
	if overlapsConfirmed(r.bookings, propertyID, bookingID, checkIn, checkOut) {
		return false, nil
	}
	b.Status = models.BookingConfirmed
	return true, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id, status string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperr.NotFound("booking not found")
	}
	b.Status = status
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) views(filter func(*models.Booking) bool) []*models.BookingView {
	var out []*models.BookingView
	for _, b := range r.bookings {
		if !filter(b) {
			continue
		}
		v := &models.BookingView{Booking: *b}
		if p, ok := r.properties[b.PropertyID]; ok {
			v.PropertyTitle = p.Title
			v.PropertyCity = p.City
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.After(out[j].CheckIn) })
	return out
}

func (r *fakeBookingRepo) ListForTraveler(_ context.Context, travelerID string) ([]*models.BookingView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views(func(b *models.Booking) bool { return b.TravelerID == travelerID }), nil
}

func (r *fakeBookingRepo) ListForOwner(_ context.Context, ownerID string) ([]*models.BookingView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views(func(b *models.Booking) bool {
		p, ok := r.properties[b.PropertyID]
		return ok && p.OwnerID == ownerID
	}), nil
}

func (r *fakeBookingRepo) OwnerRevenue(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var revenue int64
	for _, b := range r.bookings {
		p, ok := r.properties[b.PropertyID]
		if !ok || p.OwnerID != ownerID {
			continue
		}
		if b.Status == models.BookingConfirmed || b.Status == models.BookingCompleted {
			revenue += b.TotalPrice
		}
	}
	return revenue, nil
}

func (r *fakeBookingRepo) CountForOwner(_ context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, b := range r.bookings {
		if p, ok := r.properties[b.PropertyID]; ok && p.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// --- rides ---

type fakeRideRepo fakeStorage

func (r *fakeRideRepo) Create(_ context.Context, ride *models.Ride) (*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ride
	cp.ID = (*fakeStorage)(r).nextID("ride")
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.rides[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRideRepo) GetByID(_ context.Context, id string) (*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[id]
	if !ok {
		return nil, apperr.NotFound("ride not found")
	}
	cp := *ride
	return &cp, nil
}

func (r *fakeRideRepo) Accept(_ context.Context, rideID, driverProfileID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[rideID]
	if !ok || ride.Status != models.RideRequested {
		return false, nil
	}
	ride.Status = models.RideAccepted
	ride.DriverID = &driverProfileID
	return true, nil
}

func (r *fakeRideRepo) UpdateStatus(_ context.Context, rideID, status string, fare *int64) (*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[rideID]
	if !ok {
		return nil, apperr.NotFound("ride not found")
	}
	ride.Status = status
	if fare != nil {
		ride.Fare = fare
	}
	cp := *ride
	return &cp, nil
}

func (r *fakeRideRepo) ActiveForPassenger(_ context.Context, passengerID string) (*models.RideView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ride := range r.rides {
		switch ride.Status {
		case models.RideRequested, models.RideAccepted, models.RideInProgress:
			if ride.PassengerID == passengerID {
				return &models.RideView{Ride: *ride}, nil
			}
		}
	}
	return nil, apperr.NotFound("no active ride")
}

func (r *fakeRideRepo) ActiveForDriver(_ context.Context, driverProfileID string) (*models.RideView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ride := range r.rides {
		switch ride.Status {
		case models.RideAccepted, models.RideInProgress:
			if ride.DriverID != nil && *ride.DriverID == driverProfileID {
				return &models.RideView{Ride: *ride}, nil
			}
		}
	}
	return nil, apperr.NotFound("no active ride")
}

// --- notification gateway ---

type fakeGateway struct {
	mu       sync.Mutex
	codes    []string
	messages []string
	fail     bool
}

func (g *fakeGateway) SendCode(_ context.Context, _, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return errSendFailed
	}
	g.codes = append(g.codes, code)
	return nil
}

func (g *fakeGateway) SendMessage(_ context.Context, _, _ string, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return errSendFailed
	}
	g.messages = append(g.messages, text)
	return nil
}

var errSendFailed = errors.New("delivery failed")

// --- verification logs ---

type fakeVerificationRepo fakeStorage

func (r *fakeVerificationRepo) ListForUser(_ context.Context, userID string) ([]*models.VerificationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.VerificationLog
	for _, l := range r.logs {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}
