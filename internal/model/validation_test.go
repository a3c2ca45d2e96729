package model

import (
	"strings"
	"testing"
)

// ============================================================================
// CreateBoardGameRequest Tests
// ============================================================================

func TestCreateBoardGameRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	req := &CreateBoardGameRequest{
		Name:       "Brass Birmingham",
		CategoryID: "category-1",
		PlayersMin: 2,
		PlayersMax: 4,
		InStock:    3,
	}

	errors := req.Validate()
	if len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestCreateBoardGameRequest_Validate_MissingName(t *testing.T) {
	t.Parallel()

	req := &CreateBoardGameRequest{
		CategoryID: "category-1",
		PlayersMin: 1,
		PlayersMax: 4,
		InStock:    1,
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "name" {
		t.Errorf("expected name error, got %v", errors)
	}
}

func TestCreateBoardGameRequest_Validate_NameTooLong(t *testing.T) {
	t.Parallel()

	req := &CreateBoardGameRequest{
		Name:       strings.Repeat("a", MaxGameNameLength+1),
		CategoryID: "category-1",
		PlayersMin: 1,
		PlayersMax: 2,
		InStock:    1,
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "name" {
		t.Errorf("expected name length error, got %v", errors)
	}
}

func TestCreateBoardGameRequest_Validate_MissingCategory(t *testing.T) {
	t.Parallel()

	req := &CreateBoardGameRequest{
		Name:       "Azul",
		PlayersMin: 2,
		PlayersMax: 4,
		InStock:    1,
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "category_id" {
		t.Errorf("expected category_id error, got %v", errors)
	}
}

func TestCreateBoardGameRequest_Validate_PlayersMaxBelowMin(t *testing.T) {
	t.Parallel()

	req := &CreateBoardGameRequest{
		Name:       "Azul",
		CategoryID: "category-1",
		PlayersMin: 4,
		PlayersMax: 2,
		InStock:    1,
	}

	errors := req.Validate()
	hasError := false
	for _, e := range errors {
		if e.Field == "players_max" {
			hasError = true
		}
	}
	if !hasError {
		t.Errorf("expected players_max error, got %v", errors)
	}
}

func TestCreateBoardGameRequest_Validate_UnavailableAboveStock(t *testing.T) {
	t.Parallel()

	req := &CreateBoardGameRequest{
		Name:        "Azul",
		CategoryID:  "category-1",
		PlayersMin:  2,
		PlayersMax:  4,
		InStock:     2,
		Unavailable: 3,
	}

	errors := req.Validate()
	hasError := false
	for _, e := range errors {
		if e.Field == "unavailable" {
			hasError = true
		}
	}
	if !hasError {
		t.Errorf("expected unavailable error, got %v", errors)
	}
}

func TestCreateBoardGameRequest_Validate_BadDefaultReservationDays(t *testing.T) {
	t.Parallel()

	days := 0
	req := &CreateBoardGameRequest{
		Name:                   "Azul",
		CategoryID:             "category-1",
		PlayersMin:             2,
		PlayersMax:             4,
		InStock:                1,
		DefaultReservationDays: &days,
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "default_reservation_days" {
		t.Errorf("expected default_reservation_days error, got %v", errors)
	}
}

// ============================================================================
// UpdateBoardGameRequest Tests
// ============================================================================

func TestUpdateBoardGameRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	name := "Brass Lancashire"
	visible := false
	req := &UpdateBoardGameRequest{
		Name:    &name,
		Visible: &visible,
	}

	errors := req.Validate()
	if len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestUpdateBoardGameRequest_Validate_EmptyName(t *testing.T) {
	t.Parallel()

	name := ""
	req := &UpdateBoardGameRequest{Name: &name}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "name" {
		t.Errorf("expected name error, got %v", errors)
	}
}

func TestUpdateBoardGameRequest_Validate_EmptyCategory(t *testing.T) {
	t.Parallel()

	category := ""
	req := &UpdateBoardGameRequest{CategoryID: &category}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "category_id" {
		t.Errorf("expected category_id error, got %v", errors)
	}
}

// ============================================================================
// UpdateStockRequest Tests
// ============================================================================

func TestUpdateStockRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	req := &UpdateStockRequest{InStock: 5, Unavailable: 1}

	errors := req.Validate()
	if len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestUpdateStockRequest_Validate_NegativeStock(t *testing.T) {
	t.Parallel()

	req := &UpdateStockRequest{InStock: -1}

	errors := req.Validate()
	hasError := false
	for _, e := range errors {
		if e.Field == "in_stock" {
			hasError = true
		}
	}
	if !hasError {
		t.Errorf("expected in_stock error, got %v", errors)
	}
}

func TestUpdateStockRequest_Validate_UnavailableAboveStock(t *testing.T) {
	t.Parallel()

	req := &UpdateStockRequest{InStock: 2, Unavailable: 5}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "unavailable" {
		t.Errorf("expected unavailable error, got %v", errors)
	}
}

// ============================================================================
// Category Request Tests
// ============================================================================

func TestCreateCategoryRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	req := &CreateCategoryRequest{Name: "Eurogames", Colour: "#1d7a4f"}

	errors := req.Validate()
	if len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestCreateCategoryRequest_Validate_MissingName(t *testing.T) {
	t.Parallel()

	req := &CreateCategoryRequest{Colour: "#1d7a4f"}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "name" {
		t.Errorf("expected name error, got %v", errors)
	}
}

func TestCreateCategoryRequest_Validate_BadColour(t *testing.T) {
	t.Parallel()

	req := &CreateCategoryRequest{Name: "Eurogames", Colour: "green"}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "colour" {
		t.Errorf("expected colour error, got %v", errors)
	}
}

func TestUpdateCategoryRequest_Validate_EmptyName(t *testing.T) {
	t.Parallel()

	name := ""
	req := &UpdateCategoryRequest{Name: &name}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "name" {
		t.Errorf("expected name error, got %v", errors)
	}
}

// ============================================================================
// CreateReservationRequest Tests
// ============================================================================

func TestCreateReservationRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	expires := "2026-09-15T18:00:00Z"
	req := &CreateReservationRequest{
		Items: []ReservationItemRequest{
			{BoardGameID: "game-1"},
			{BoardGameID: "game-2", ExpiresOn: &expires},
		},
	}

	errors := req.Validate()
	if len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestCreateReservationRequest_Validate_NoItems(t *testing.T) {
	t.Parallel()

	req := &CreateReservationRequest{}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "items" {
		t.Errorf("expected items error, got %v", errors)
	}
}

func TestCreateReservationRequest_Validate_TooManyItems(t *testing.T) {
	t.Parallel()

	items := make([]ReservationItemRequest, MaxItemsPerReservation+1)
	for i := range items {
		items[i] = ReservationItemRequest{BoardGameID: "game-1"}
	}
	req := &CreateReservationRequest{Items: items}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "items" {
		t.Errorf("expected items error, got %v", errors)
	}
}

func TestCreateReservationRequest_Validate_MissingGameID(t *testing.T) {
	t.Parallel()

	req := &CreateReservationRequest{
		Items: []ReservationItemRequest{{BoardGameID: ""}},
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "items" {
		t.Errorf("expected items error, got %v", errors)
	}
}

func TestCreateReservationRequest_Validate_BadExpiry(t *testing.T) {
	t.Parallel()

	expires := "next tuesday"
	req := &CreateReservationRequest{
		Items: []ReservationItemRequest{{BoardGameID: "game-1", ExpiresOn: &expires}},
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "items" {
		t.Errorf("expected items error, got %v", errors)
	}
}

// ============================================================================
// ExtendItemRequest Tests
// ============================================================================

func TestExtendItemRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	req := &ExtendItemRequest{NewExpiresOn: "2026-09-30T18:00:00Z"}

	errors := req.Validate()
	if len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestExtendItemRequest_Validate_Missing(t *testing.T) {
	t.Parallel()

	req := &ExtendItemRequest{}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "new_expires_on" {
		t.Errorf("expected new_expires_on error, got %v", errors)
	}
}

func TestExtendItemRequest_Validate_BadDatetime(t *testing.T) {
	t.Parallel()

	req := &ExtendItemRequest{NewExpiresOn: "2026-09-30"}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "new_expires_on" {
		t.Errorf("expected new_expires_on error, got %v", errors)
	}
}

// ============================================================================
// CreatePlannedStateRequest Tests
// ============================================================================

func TestCreatePlannedStateRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	req := &CreatePlannedStateRequest{
		Kind:       "open",
		Start:      "2026-09-04T18:00:00Z",
		PlannedEnd: "2026-09-04T23:00:00Z",
	}

	errors := req.Validate()
	if len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestCreatePlannedStateRequest_Validate_InvalidKind(t *testing.T) {
	t.Parallel()

	req := &CreatePlannedStateRequest{
		Kind:       "maybe",
		Start:      "2026-09-04T18:00:00Z",
		PlannedEnd: "2026-09-04T23:00:00Z",
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "kind" {
		t.Errorf("expected kind error, got %v", errors)
	}
}

func TestCreatePlannedStateRequest_Validate_EndBeforeStart(t *testing.T) {
	t.Parallel()

	req := &CreatePlannedStateRequest{
		Kind:       "open",
		Start:      "2026-09-04T23:00:00Z",
		PlannedEnd: "2026-09-04T18:00:00Z",
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "planned_end" {
		t.Errorf("expected planned_end error, got %v", errors)
	}
}

func TestCreatePlannedStateRequest_Validate_MissingStart(t *testing.T) {
	t.Parallel()

	req := &CreatePlannedStateRequest{
		Kind:       "closed",
		PlannedEnd: "2026-09-04T23:00:00Z",
	}

	errors := req.Validate()
	hasError := false
	for _, e := range errors {
		if e.Field == "start" {
			hasError = true
		}
	}
	if !hasError {
		t.Errorf("expected start error, got %v", errors)
	}
}

// ============================================================================
// CreateRepeatingStateRequest Tests
// ============================================================================

func TestCreateRepeatingStateRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	req := &CreateRepeatingStateRequest{
		Kind:          "open",
		DayOfWeek:     5,
		MinutesFrom:   18 * 60,
		MinutesTo:     23 * 60,
		EffectiveFrom: "2026-09-01T00:00:00Z",
	}

	errors := req.Validate()
	if len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestCreateRepeatingStateRequest_Validate_BadDayOfWeek(t *testing.T) {
	t.Parallel()

	req := &CreateRepeatingStateRequest{
		Kind:          "open",
		DayOfWeek:     7,
		MinutesFrom:   18 * 60,
		MinutesTo:     23 * 60,
		EffectiveFrom: "2026-09-01T00:00:00Z",
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "day_of_week" {
		t.Errorf("expected day_of_week error, got %v", errors)
	}
}

func TestCreateRepeatingStateRequest_Validate_MinutesBackwards(t *testing.T) {
	t.Parallel()

	req := &CreateRepeatingStateRequest{
		Kind:          "open",
		DayOfWeek:     5,
		MinutesFrom:   23 * 60,
		MinutesTo:     18 * 60,
		EffectiveFrom: "2026-09-01T00:00:00Z",
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "minutes_to" {
		t.Errorf("expected minutes_to error, got %v", errors)
	}
}

// ============================================================================
// CreateEventRequest Tests
// ============================================================================

func TestCreateEventRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	req := &CreateEventRequest{
		Name: "Autumn Tournament",
		From: "2026-10-10T10:00:00Z",
		To:   "2026-10-10T20:00:00Z",
	}

	errors := req.Validate()
	if len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestCreateEventRequest_Validate_ToBeforeFrom(t *testing.T) {
	t.Parallel()

	req := &CreateEventRequest{
		Name: "Autumn Tournament",
		From: "2026-10-10T20:00:00Z",
		To:   "2026-10-10T10:00:00Z",
	}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "to" {
		t.Errorf("expected to error, got %v", errors)
	}
}

// ============================================================================
// RegisterRequest Tests
// ============================================================================

func TestRegisterRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	req := &RegisterRequest{
		Username:    "alex.k",
		DisplayName: "Alex",
		Password:    "correct-horse-battery",
	}

	errors := req.Validate()
	if len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestRegisterRequest_Validate_UsernameTooShort(t *testing.T) {
	t.Parallel()

	req := &RegisterRequest{Username: "ab", Password: "correct-horse-battery"}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "username" {
		t.Errorf("expected username error, got %v", errors)
	}
}

func TestRegisterRequest_Validate_UsernameBadCharacters(t *testing.T) {
	t.Parallel()

	req := &RegisterRequest{Username: "Alex K!", Password: "correct-horse-battery"}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "username" {
		t.Errorf("expected username error, got %v", errors)
	}
}

func TestRegisterRequest_Validate_PasswordTooShort(t *testing.T) {
	t.Parallel()

	req := &RegisterRequest{Username: "alex.k", Password: "short"}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "password" {
		t.Errorf("expected password error, got %v", errors)
	}
}

// ============================================================================
// ItemState Tests
// ============================================================================

func TestItemState_IsTerminal(t *testing.T) {
	t.Parallel()

	terminal := []ItemState{ItemStateDone, ItemStateCancelled, ItemStateExpired}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	active := []ItemState{ItemStateReserved, ItemStateCurrent}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestItemState_IsActive(t *testing.T) {
	t.Parallel()

	if !ItemStateReserved.IsActive() || !ItemStateCurrent.IsActive() {
		t.Error("reserved and current should consume a copy")
	}
	if ItemStateDone.IsActive() || ItemStateCancelled.IsActive() || ItemStateExpired.IsActive() {
		t.Error("terminal states should not consume a copy")
	}
}

func TestItemState_IsValid_RejectsUnknown(t *testing.T) {
	t.Parallel()

	if ItemState("lost").IsValid() {
		t.Error("unknown state should not be valid")
	}
}

// ============================================================================
// Access Tests
// ============================================================================

func TestAccess_Anonymous_HasNoCapabilities(t *testing.T) {
	t.Parallel()

	access := Anonymous()

	if access.IsAuthenticated() {
		t.Error("anonymous access should not be authenticated")
	}
	if access.CanManageBoardGames() || access.CanManageStates() || access.CanManageEvents() || access.IsAdmin() {
		t.Error("anonymous access should have no capabilities")
	}
}

func TestAccess_AdminImpliesAllManagerCapabilities(t *testing.T) {
	t.Parallel()

	access := Access{UserID: "user-1", Roles: []Role{RoleAdmin}}

	if !access.CanManageBoardGames() || !access.CanManageStates() || !access.CanManageEvents() {
		t.Error("admin should hold every manager capability")
	}
}

func TestAccess_ManagerRoleIsScoped(t *testing.T) {
	t.Parallel()

	access := Access{UserID: "user-1", Roles: []Role{RoleBoardGamesManager}}

	if !access.CanManageBoardGames() {
		t.Error("board games manager should manage board games")
	}
	if access.CanManageStates() || access.CanManageEvents() || access.IsAdmin() {
		t.Error("board games manager should not hold other capabilities")
	}
}

func TestAccess_SameUser(t *testing.T) {
	t.Parallel()

	access := Access{UserID: "user-1"}

	if !access.SameUser("user-1") {
		t.Error("expected SameUser to match the caller")
	}
	if access.SameUser("user-2") {
		t.Error("expected SameUser to reject another user")
	}
	if Anonymous().SameUser("") {
		t.Error("anonymous should never match a user")
	}
}
