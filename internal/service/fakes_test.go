package service

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"branchstock/internal/model"
	"branchstock/internal/repository"
)

// The fakes below back the service tests with in-memory state while reusing
// the real model logic (ApplyDelta, MarkReceived, IsLow) that the GORM
// repositories run inside their transactions.

type ledgerKey struct {
	itemID     uuid.UUID
	locationID uuid.UUID
}

type fakeLedger struct {
	records   map[ledgerKey]*model.InventoryRecord
	movements []model.StockMovement
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[ledgerKey]*model.InventoryRecord)}
}

func (f *fakeLedger) seed(itemID, locationID uuid.UUID, quantity, alertLimit int) {
	rec := &model.InventoryRecord{
		ItemID:     itemID,
		LocationID: locationID,
		Quantity:   quantity,
		AlertLimit: alertLimit,
	}
	rec.ID = uuid.New()
	f.records[ledgerKey{itemID, locationID}] = rec
}

func (f *fakeLedger) fetch(itemID, locationID uuid.UUID, alertLimit int, create bool) (*model.InventoryRecord, error) {
	if rec, ok := f.records[ledgerKey{itemID, locationID}]; ok {
		return rec, nil
	}
	if !create {
		return nil, &model.InsufficientStockError{Available: 0}
	}
	if alertLimit <= 0 {
		alertLimit = model.DefaultAlertThreshold
	}
	rec := &model.InventoryRecord{
		ItemID:        itemID,
		LocationID:    locationID,
		AlertLimit:    alertLimit,
		MinStockLevel: alertLimit,
	}
	rec.ID = uuid.New()
	f.records[ledgerKey{itemID, locationID}] = rec
	return rec, nil
}

func (f *fakeLedger) Get(itemID, locationID uuid.UUID) (*model.InventoryRecord, error) {
	if rec, ok := f.records[ledgerKey{itemID, locationID}]; ok {
		return rec, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLedger) ListByItem(itemID uuid.UUID) ([]model.InventoryRecord, error) {
	var out []model.InventoryRecord
	for _, rec := range f.records {
		if rec.ItemID == itemID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListScoped(locationIDs []uuid.UUID, all bool) ([]model.InventoryRecord, error) {
	var out []model.InventoryRecord
	for _, rec := range f.records {
		if all || containsID(locationIDs, rec.LocationID) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeLedger) ApplyMovement(mv *model.StockMovement, alertLimit int) (*model.InventoryRecord, error) {
	rec, err := f.fetch(mv.ItemID, mv.LocationID, alertLimit, mv.Type == model.MovementIn)
	if err != nil {
		return nil, err
	}
	if err := rec.ApplyDelta(mv.SignedQuantity()); err != nil {
		return nil, err
	}
	f.movements = append(f.movements, *mv)
	return rec, nil
}

func (f *fakeLedger) AdjustTo(itemID, locationID uuid.UUID, physical int, reference string, userID uuid.UUID) (int, *model.InventoryRecord, error) {
	rec, err := f.fetch(itemID, locationID, 0, true)
	if err != nil {
		return 0, nil, err
	}
	delta := physical - rec.Quantity
	if delta == 0 {
		return 0, rec, nil
	}
	mvType := model.MovementIn
	qty := delta
	if delta < 0 {
		mvType = model.MovementOut
		qty = -delta
	}
	f.movements = append(f.movements, model.StockMovement{
		ItemID: itemID, LocationID: locationID,
		Type: mvType, Quantity: qty,
		Reference: reference, Reason: model.ReasonStockCount, UserID: userID,
	})
	if err := rec.ApplyDelta(delta); err != nil {
		return 0, nil, err
	}
	return delta, rec, nil
}

func (f *fakeLedger) SetThresholdForItem(itemID uuid.UUID, alertLimit int) error {
	for _, rec := range f.records {
		if rec.ItemID == itemID {
			rec.AlertLimit = alertLimit
			rec.MinStockLevel = alertLimit
		}
	}
	return nil
}

func (f *fakeLedger) SetThreshold(itemID, locationID uuid.UUID, alertLimit int) error {
	if rec, ok := f.records[ledgerKey{itemID, locationID}]; ok {
		rec.AlertLimit = alertLimit
		rec.MinStockLevel = alertLimit
	}
	return nil
}

func (f *fakeLedger) HasStockAtLocation(locationID uuid.UUID) (bool, error) {
	for _, rec := range f.records {
		if rec.LocationID == locationID && rec.Quantity > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) HasStockForItem(itemID uuid.UUID) (bool, error) {
	for _, rec := range f.records {
		if rec.ItemID == itemID && rec.Quantity > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) PurgeZeroForItem(itemID uuid.UUID) error {
	for key, rec := range f.records {
		if rec.ItemID == itemID && rec.Quantity == 0 {
			delete(f.records, key)
		}
	}
	return nil
}

func (f *fakeLedger) FindLowStock(locationIDs []uuid.UUID, all bool, page, limit int) (*repository.LowStockPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	out := &repository.LowStockPage{Records: []model.InventoryRecord{}}
	if !all && len(locationIDs) == 0 {
		return out, nil
	}

	var low []model.InventoryRecord
	for _, rec := range f.records {
		if !all && !containsID(locationIDs, rec.LocationID) {
			continue
		}
		if rec.IsLow() {
			low = append(low, *rec)
		}
	}
	sort.Slice(low, func(i, j int) bool { return low[i].Quantity < low[j].Quantity })

	out.Total = int64(len(low))
	start := (page - 1) * limit
	for i := start; i < len(low) && i < start+limit; i++ {
		out.Records = append(out.Records, low[i])
	}
	return out, nil
}

// movementSum folds the recorded movements for one ledger row, mirroring the
// invariant that the quantity equals the signed movement total.
func (f *fakeLedger) movementSum(itemID, locationID uuid.UUID) int {
	sum := 0
	for _, mv := range f.movements {
		if mv.ItemID == itemID && mv.LocationID == locationID {
			sum += mv.SignedQuantity()
		}
	}
	return sum
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type fakeItems struct {
	items map[uuid.UUID]*model.Item
}

func newFakeItems() *fakeItems {
	return &fakeItems{items: make(map[uuid.UUID]*model.Item)}
}

func (f *fakeItems) add(name string) *model.Item {
	item := &model.Item{SKU: model.NormalizeSKU(name), Name: name, IsActive: true}
	item.ID = uuid.New()
	f.items[item.ID] = item
	return item
}

func (f *fakeItems) Create(item *model.Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeItems) Update(item *model.Item) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeItems) Delete(id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

func (f *fakeItems) FindActive() ([]model.Item, error) {
	var out []model.Item
	for _, item := range f.items {
		if item.IsActive {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeItems) FindByID(id uuid.UUID) (*model.Item, error) {
	if item, ok := f.items[id]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeItems) FindBySKUOrName(sku, name string) (*model.Item, error) {
	for _, item := range f.items {
		if item.SKU == sku || item.Name == name {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeItems) CountByCategory(categoryID uuid.UUID) (int64, error) {
	var count int64
	for _, item := range f.items {
		if item.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

type fakeLocations struct {
	locations map[uuid.UUID]*model.Location
}

func newFakeLocations() *fakeLocations {
	return &fakeLocations{locations: make(map[uuid.UUID]*model.Location)}
}

func (f *fakeLocations) add(name string) *model.Location {
	loc := &model.Location{Name: name, City: "Lagos"}
	loc.ID = uuid.New()
	f.locations[loc.ID] = loc
	return loc
}

func (f *fakeLocations) Create(loc *model.Location) error {
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	f.locations[loc.ID] = loc
	return nil
}

func (f *fakeLocations) Update(loc *model.Location) error {
	f.locations[loc.ID] = loc
	return nil
}

func (f *fakeLocations) Delete(id uuid.UUID) error {
	delete(f.locations, id)
	return nil
}

func (f *fakeLocations) FindByID(id uuid.UUID) (*model.Location, error) {
	if loc, ok := f.locations[id]; ok {
		return loc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLocations) FindByName(name string) (*model.Location, error) {
	for _, loc := range f.locations {
		if loc.Name == name {
			return loc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLocations) FindByNameLike(fragment string) (*model.Location, error) {
	for _, loc := range f.locations {
		if strings.Contains(strings.ToLower(loc.Name), strings.ToLower(fragment)) {
			return loc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLocations) FindAll() ([]model.Location, error) {
	var out []model.Location
	for _, loc := range f.locations {
		out = append(out, *loc)
	}
	return out, nil
}

func (f *fakeLocations) FindByIDs(ids []uuid.UUID) ([]model.Location, error) {
	var out []model.Location
	for _, id := range ids {
		if loc, ok := f.locations[id]; ok {
			out = append(out, *loc)
		}
	}
	return out, nil
}

type fakeCategories struct {
	categories map[uuid.UUID]*model.Category
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{categories: make(map[uuid.UUID]*model.Category)}
}

func (f *fakeCategories) add(name string) *model.Category {
	category := &model.Category{Name: name, IsActive: true}
	category.ID = uuid.New()
	f.categories[category.ID] = category
	return category
}

func (f *fakeCategories) Create(category *model.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategories) FindActive() ([]model.Category, error) {
	var out []model.Category
	for _, category := range f.categories {
		if category.IsActive {
			out = append(out, *category)
		}
	}
	return out, nil
}

func (f *fakeCategories) FindByID(id uuid.UUID) (*model.Category, error) {
	if category, ok := f.categories[id]; ok {
		return category, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategories) FindByName(name string) (*model.Category, error) {
	for _, category := range f.categories {
		if category.Name == name {
			return category, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategories) Delete(id uuid.UUID) error {
	delete(f.categories, id)
	return nil
}

type fakeEmployees struct {
	byUser map[uuid.UUID]*model.Employee
}

func newFakeEmployees() *fakeEmployees {
	return &fakeEmployees{byUser: make(map[uuid.UUID]*model.Employee)}
}

func (f *fakeEmployees) Create(emp *model.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	f.byUser[emp.UserID] = emp
	return nil
}

func (f *fakeEmployees) Update(emp *model.Employee) error {
	f.byUser[emp.UserID] = emp
	return nil
}

func (f *fakeEmployees) FindByID(id uuid.UUID) (*model.Employee, error) {
	for _, emp := range f.byUser {
		if emp.ID == id {
			return emp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployees) FindByUserID(userID uuid.UUID) (*model.Employee, error) {
	if emp, ok := f.byUser[userID]; ok {
		return emp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployees) FindAll() ([]model.Employee, error) {
	var out []model.Employee
	for _, emp := range f.byUser {
		out = append(out, *emp)
	}
	return out, nil
}

// fakeTransfers mirrors the transactional repository against the in-memory
// ledger, reusing the real MarkReceived state machine.
type fakeTransfers struct {
	ledger    *fakeLedger
	transfers map[uuid.UUID]*model.StockTransfer
}

func newFakeTransfers(ledger *fakeLedger) *fakeTransfers {
	return &fakeTransfers{ledger: ledger, transfers: make(map[uuid.UUID]*model.StockTransfer)}
}

func (f *fakeTransfers) Initiate(t *model.StockTransfer) error {
	src, err := f.ledger.fetch(t.ItemID, t.SourceLocationID, 0, false)
	if err != nil {
		return err
	}
	if err := src.ApplyDelta(-t.ShippedQuantity); err != nil {
		return err
	}
	f.ledger.movements = append(f.ledger.movements, model.StockMovement{
		ItemID: t.ItemID, LocationID: t.SourceLocationID,
		Type: model.MovementOut, Quantity: t.ShippedQuantity,
		Reference: "transfer out: " + t.Reference,
		Reason:    model.ReasonTransfer, UserID: t.InitiatedByID,
	})

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Status = model.TransferInTransit
	f.transfers[t.ID] = t
	return nil
}

func (f *fakeTransfers) Confirm(id uuid.UUID, received int, note string, userID uuid.UUID) (*model.StockTransfer, error) {
	t, ok := f.transfers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := t.MarkReceived(received, note, userID); err != nil {
		return nil, err
	}

	f.ledger.movements = append(f.ledger.movements, model.StockMovement{
		ItemID: t.ItemID, LocationID: t.DestinationLocationID,
		Type: model.MovementIn, Quantity: received,
		Reference: "transfer in: " + t.Reference,
		Reason:    model.ReasonTransfer, UserID: userID,
	})
	dest, err := f.ledger.fetch(t.ItemID, t.DestinationLocationID, 0, true)
	if err != nil {
		return nil, err
	}
	if err := dest.ApplyDelta(received); err != nil {
		return nil, err
	}
	return t, nil
}

func (f *fakeTransfers) FindByID(id uuid.UUID) (*model.StockTransfer, error) {
	if t, ok := f.transfers[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTransfers) List(locationIDs []uuid.UUID, all bool) ([]model.StockTransfer, error) {
	var out []model.StockTransfer
	for _, t := range f.transfers {
		if all || containsID(locationIDs, t.SourceLocationID) || containsID(locationIDs, t.DestinationLocationID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

// recordingNotifier captures fan-out calls for assertions.
type recordingNotifier struct {
	lowStock  []string
	shipped   []string
	completed []string
	disputes  []string
}

func (r *recordingNotifier) NotifyLowStock(itemID, locationID uuid.UUID, itemName, locationName string, quantity, threshold int, actor *model.User) {
	r.lowStock = append(r.lowStock, itemName)
}

func (r *recordingNotifier) NotifyTransferShipped(t *model.StockTransfer, actor *model.User) {
	r.shipped = append(r.shipped, t.Reference)
}

func (r *recordingNotifier) NotifyTransferCompleted(t *model.StockTransfer, actor *model.User) {
	r.completed = append(r.completed, t.Reference)
}

func (r *recordingNotifier) NotifyTransferDispute(t *model.StockTransfer, actor *model.User) {
	r.disputes = append(r.disputes, t.Reference)
}

func (r *recordingNotifier) ListForUser(userID uuid.UUID, limit int) ([]model.NotificationResponse, error) {
	return nil, nil
}

func (r *recordingNotifier) MarkRead(notificationID, userID uuid.UUID) error { return nil }

func (r *recordingNotifier) UnreadCount(userID uuid.UUID) (int64, error) { return 0, nil }

func newID() uuid.UUID {
	return uuid.New()
}

func adminUser() *model.User {
	u := &model.User{Role: model.RoleAdmin, IsActive: true}
	u.ID = uuid.New()
	return u
}

func employeeUser() *model.User {
	u := &model.User{Role: model.RoleEmployee, IsActive: true}
	u.ID = uuid.New()
	return u
}
