package models

import "travel-ops/core/reconcile"

// DepartureFromDomain builds the row for d, including its children.
func DepartureFromDomain(packageID string, position int, d reconcile.Departure) Departure {
	row := Departure{
		ID:             d.ID,
		PackageID:      packageID,
		Position:       position,
		FlightLabel:    d.FlightLabel,
		Airline:        d.Airline,
		DepartureDate:  d.DepartureDate,
		ReturnDate:     d.ReturnDate,
		Status:         string(d.Status),
		ValidationDate: d.ValidationDate,
	}
	for _, s := range d.SupplierLinks {
		row.SupplierLinks = append(row.SupplierLinks, SupplierLinkFromDomain(d.ID, s))
	}
	for _, c := range d.CostLines {
		row.CostLines = append(row.CostLines, CostLineFromDomain(d.ID, c))
	}
	for _, t := range d.TimelineItems {
		row.TimelineItems = append(row.TimelineItems, TimelineItemFromDomain(d.ID, t))
	}
	return row
}

// ToDomain converts the row. Child slices are never nil.
func (d Departure) ToDomain() reconcile.Departure {
	out := reconcile.Departure{
		ID:             d.ID,
		FlightLabel:    d.FlightLabel,
		Airline:        d.Airline,
		DepartureDate:  d.DepartureDate,
		ReturnDate:     d.ReturnDate,
		Status:         reconcile.Status(d.Status),
		ValidationDate: d.ValidationDate,
		SupplierLinks:  make([]reconcile.SupplierLink, 0, len(d.SupplierLinks)),
		CostLines:      make([]reconcile.CostLine, 0, len(d.CostLines)),
		TimelineItems:  make([]reconcile.TimelineItem, 0, len(d.TimelineItems)),
	}
	for _, s := range d.SupplierLinks {
		out.SupplierLinks = append(out.SupplierLinks, s.ToDomain())
	}
	for _, c := range d.CostLines {
		out.CostLines = append(out.CostLines, c.ToDomain())
	}
	for _, t := range d.TimelineItems {
		out.TimelineItems = append(out.TimelineItems, t.ToDomain())
	}
	return out
}

// SupplierLinkFromDomain builds the row of a supplier link owned by departureID.
func SupplierLinkFromDomain(departureID string, s reconcile.SupplierLink) SupplierLink {
	return SupplierLink{
		ID:          s.ID,
		DepartureID: departureID,
		Name:        s.Name,
		Contact:     s.Contact,
		Cost:        s.Cost,
		Deadline:    s.Deadline,
	}
}

// ToDomain converts the row to the engine type.
func (s SupplierLink) ToDomain() reconcile.SupplierLink {
	return reconcile.SupplierLink{
		ID:          s.ID,
		DepartureID: s.DepartureID,
		Name:        s.Name,
		Contact:     s.Contact,
		Cost:        s.Cost,
		Deadline:    s.Deadline,
	}
}

// CostLineFromDomain builds the row of a cost line owned by departureID.
func CostLineFromDomain(departureID string, c reconcile.CostLine) CostLine {
	return CostLine{
		ID:          c.ID,
		DepartureID: departureID,
		Label:       c.Label,
		Amount:      c.Amount,
		DueDate:     c.DueDate,
		Paid:        c.Paid,
	}
}

// ToDomain converts the row to the engine type.
func (c CostLine) ToDomain() reconcile.CostLine {
	return reconcile.CostLine{
		ID:          c.ID,
		DepartureID: c.DepartureID,
		Label:       c.Label,
		Amount:      c.Amount,
		DueDate:     c.DueDate,
		Paid:        c.Paid,
	}
}

// TimelineItemFromDomain builds the row of a timeline item owned by departureID.
func TimelineItemFromDomain(departureID string, t reconcile.TimelineItem) TimelineItem {
	return TimelineItem{
		ID:          t.ID,
		DepartureID: departureID,
		Title:       t.Title,
		Date:        t.Date,
		Note:        t.Note,
		Kind:        string(t.Kind),
	}
}

// ToDomain converts the row to the engine type.
func (t TimelineItem) ToDomain() reconcile.TimelineItem {
	return reconcile.TimelineItem{
		ID:          t.ID,
		DepartureID: t.DepartureID,
		Title:       t.Title,
		Date:        t.Date,
		Note:        t.Note,
		Kind:        reconcile.TimelineKind(t.Kind),
	}
}
