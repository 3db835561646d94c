package shop

import (
	"context"
	"errors"
	"log/slog"

	"marketplace/internal/complaints"
	"marketplace/internal/events"
	"marketplace/pkg/logkey"
)

type ComplaintRequest struct {
	ProductID string
	Type      string
	Title     string
	Content   string
}

// FileComplaint records a complaint by the caller against an existing product.
func (e *Engine) FileComplaint(ctx context.Context, s *Session, r ComplaintRequest) (complaints.Complaint, error) {
	c, err := e.fileComplaint(ctx, s, r)
	e.observe("file_complaint", err)
	return c, err
}

func (e *Engine) fileComplaint(ctx context.Context, s *Session, r ComplaintRequest) (complaints.Complaint, error) {
	unlock := lock(s)
	me, err := requireLogin(s)
	unlock()
	if err != nil {
		return complaints.Complaint{}, err
	}
	if r.ProductID == "" || r.Title == "" || r.Content == "" {
		return complaints.Complaint{}, newError(KindValidation, "product id, title and content must not be empty")
	}
	p, err := e.catalog.Find(r.ProductID)
	if err != nil {
		return complaints.Complaint{}, productNotFound(r.ProductID, err)
	}

	c := complaints.Complaint{
		ID:          e.newID("CMP"),
		ProductID:   p.ID,
		ProductName: p.Name,
		Complainant: me.Username,
		Type:        r.Type,
		Title:       r.Title,
		Content:     r.Content,
		CreatedAt:   e.now(),
		Status:      complaints.StatusPending,
	}
	e.complaints.Append(c)

	e.logger.Info("complaint filed", slog.String(logkey.ComplaintID, c.ID), slog.String(logkey.ProductID, p.ID),
		slog.String(logkey.Username, me.Username))
	e.publish(ctx, events.TopicComplaintFiled, c.ID, events.ComplaintEvent{
		ComplaintId: c.ID,
		ProductId:   c.ProductID,
		Status:      string(c.Status),
		By:          me.Username,
		CreatedAt:   c.CreatedAt,
	})
	return c, nil
}

func (e *Engine) MyComplaints(_ context.Context, s *Session) ([]complaints.Complaint, error) {
	defer lock(s)()
	me, err := requireLogin(s)
	if err != nil {
		return nil, err
	}
	return e.complaints.ByComplainant(me.Username), nil
}

func (e *Engine) AdminListComplaints(_ context.Context, s *Session) ([]complaints.Complaint, error) {
	defer lock(s)()
	if _, err := requireAdmin(s); err != nil {
		return nil, err
	}
	return e.complaints.All(), nil
}

// AdminResolveComplaint answers a complaint. A complaint is answered once.
func (e *Engine) AdminResolveComplaint(ctx context.Context, s *Session, id, response string) (complaints.Complaint, error) {
	c, err := e.adminResolveComplaint(ctx, s, id, response)
	e.observe("admin_resolve_complaint", err)
	return c, err
}

func (e *Engine) adminResolveComplaint(ctx context.Context, s *Session, id, response string) (complaints.Complaint, error) {
	unlock := lock(s)
	me, err := requireAdmin(s)
	unlock()
	if err != nil {
		return complaints.Complaint{}, err
	}
	if response == "" {
		return complaints.Complaint{}, newError(KindValidation, "response must not be empty")
	}

	at := e.now()
	c, err := e.complaints.Modify(id, func(c *complaints.Complaint) error {
		if c.Status.Processed() {
			return newError(KindInvalidState, "complaint %s is already %s", c.ID, c.Status)
		}
		c.Resolve(response, me.Username, at)
		return nil
	})
	if err != nil {
		if errors.Is(err, complaints.ErrNotFound) {
			return complaints.Complaint{}, wrapError(KindNotFound, err, "complaint %s not found", id)
		}
		return complaints.Complaint{}, err
	}

	e.logger.Info("complaint resolved", slog.String(logkey.ComplaintID, c.ID), slog.String(logkey.Username, me.Username))
	e.publish(ctx, events.TopicComplaintResolved, c.ID, events.ComplaintEvent{
		ComplaintId: c.ID,
		ProductId:   c.ProductID,
		Status:      string(c.Status),
		By:          me.Username,
		CreatedAt:   at,
	})
	return c, nil
}
