package slot

// NumPages is the number of pages of the address space.
const NumPages = 4

// Resolution is the result of resolving an address.
type Resolution struct {
	Slot   ID
	Page   Page
	Offset uint16
}

// Resolver maps addresses to the slot that is currently selected for their page.
// It is not safe for concurrent use, the owning bus serializes all access.
type Resolver struct {
	assignment [NumPages]ID
	expanded   [4]bool

	// secondary holds the secondary slot register value of every primary slot,
	// two bits per page.
	secondary [4]byte
}

// Option configures a resolver.
type Option func(*Resolver)

// WithExpanded marks the given primary slots as expanded.
func WithExpanded(primaries ...uint8) Option {
	return func(r *Resolver) {
		for _, p := range primaries {
			r.expanded[p&3] = true
		}
	}
}

// NewResolver returns a resolver with every page assigned to primary slot 0.
func NewResolver(options ...Option) *Resolver {
	r := &Resolver{}
	for _, option := range options {
		option(r)
	}
	for page := range r.assignment {
		r.assignment[page] = r.effective(Page(page), Primary(0))
	}
	return r
}

// Resolve returns the slot, page and page offset of the address.
func (r *Resolver) Resolve(address uint16) Resolution {
	page := PageOf(address)
	return Resolution{
		Slot:   r.assignment[page],
		Page:   page,
		Offset: OffsetOf(address),
	}
}

// SelectSlot selects the slot for the given page. The selection stays active
// until the page is selected again.
func (r *Resolver) SelectSlot(page Page, id ID) {
	page &= 3
	id = r.effective(page, id)
	r.assignment[page] = id

	if id.Expanded {
		shift := uint(page) * 2
		sec := &r.secondary[id.Primary]
		*sec = *sec&^(3<<shift) | id.Secondary<<shift
	}
}

// IsExpanded returns whether the primary slot is expanded.
func (r *Resolver) IsExpanded(primary uint8) bool {
	return r.expanded[primary&3]
}

// Assignment returns a copy of the current page to slot table.
func (r *Resolver) Assignment() [NumPages]ID {
	return r.assignment
}

// Slot returns the slot currently selected for the page.
func (r *Resolver) Slot(page Page) ID {
	return r.assignment[page&3]
}

// PrimarySelect returns the value of the primary slot select register,
// two bits per page with page 0 in the lowest bits.
func (r *Resolver) PrimarySelect() byte {
	var value byte
	for page, id := range r.assignment {
		value |= (id.Primary & 3) << (page * 2)
	}
	return value
}

// SetPrimarySelect sets the primary slot of every page from a primary slot
// select register value. The secondary slot of an expanded primary slot is
// taken from its secondary slot register.
func (r *Resolver) SetPrimarySelect(value byte) {
	for page := range r.assignment {
		shift := uint(page) * 2
		primary := (value >> shift) & 3
		id := Primary(primary)
		if r.expanded[primary] {
			id = Expanded(primary, (r.secondary[primary]>>shift)&3)
		}
		r.assignment[page] = id
	}
}

// SecondarySelect returns the secondary slot register value of the primary slot.
// Non expanded slots always return 0.
func (r *Resolver) SecondarySelect(primary uint8) byte {
	return r.secondary[primary&3]
}

// SetSecondarySelect sets the secondary slot register of an expanded primary slot.
// Pages that currently have the primary slot selected switch to the new secondary
// slots. The write is ignored for non expanded slots.
func (r *Resolver) SetSecondarySelect(primary uint8, value byte) {
	primary &= 3
	if !r.expanded[primary] {
		return
	}

	r.secondary[primary] = value
	for page, id := range r.assignment {
		if id.Primary != primary {
			continue
		}
		r.assignment[page] = Expanded(primary, (value>>(uint(page)*2))&3)
	}
}

// effective normalizes the ID against the expansion table. The secondary index
// of a slot that is not expanded is dropped, an expanded slot referenced
// without secondary index uses the current secondary register of the page.
func (r *Resolver) effective(page Page, id ID) ID {
	primary := id.Primary & 3
	if !r.expanded[primary] {
		return Primary(primary)
	}
	if !id.Expanded {
		return Expanded(primary, (r.secondary[primary]>>(uint(page)*2))&3)
	}
	return Expanded(primary, id.Secondary)
}
