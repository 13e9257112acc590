// Package layer relays the Layer sign-up calls to the vendor and reshapes
// the responses for the wizard.
package layer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"layerdemo/internal/infrastructure/plaid"
)

var tracer = otel.Tracer("layerdemo/layer")

// Service contains the relay logic between the wizard and the vendor API
type Service struct {
	client     plaid.ClientInterface
	items      ItemRepository
	templateID string
}

// NewService creates a new relay service. items may be nil, in which case
// linked items are not kept.
func NewService(client plaid.ClientInterface, items ItemRepository, templateID string) *Service {
	return &Service{
		client:     client,
		items:      items,
		templateID: templateID,
	}
}

// CreateSessionToken asks the vendor for a Layer session and returns the
// link token the widget is initialized with.
func (s *Service) CreateSessionToken(ctx context.Context, clientUserID string) (string, error) {
	ctx, span := tracer.Start(ctx, "layer.CreateSessionToken")
	defer span.End()

	resp, err := s.client.SessionTokenCreate(ctx, plaid.SessionTokenCreateRequest{
		TemplateID: s.templateID,
		User:       plaid.SessionTokenUser{ClientUserID: clientUserID},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	log.Printf("Session token response: request_id=%s", resp.RequestID)

	if resp.Link == nil || resp.Link.LinkToken == "" {
		span.SetStatus(codes.Error, ErrMissingLinkToken.Error())
		return "", ErrMissingLinkToken
	}
	return resp.Link.LinkToken, nil
}

// FetchAccountSessionInfo exchanges a public token for the user's identity
// and, when an item was linked, the bank name and its accounts.
func (s *Service) FetchAccountSessionInfo(ctx context.Context, publicToken string) (*AccountSessionInfo, error) {
	if strings.TrimSpace(publicToken) == "" {
		return nil, fmt.Errorf("%w: public token is required", ErrInvalidInput)
	}

	ctx, span := tracer.Start(ctx, "layer.FetchAccountSessionInfo")
	defer span.End()

	session, err := s.client.UserAccountSessionGet(ctx, publicToken)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	log.Printf("Account session token response: request_id=%s items=%d", session.RequestID, len(session.Items))

	info := &AccountSessionInfo{
		Identity:       toIdentity(session.Identity),
		AccountObjects: []AccountObject{},
	}

	var first plaid.UserAccountItem
	if len(session.Items) > 0 {
		first = session.Items[0]
	}
	span.SetAttributes(attribute.Bool("layer.item_linked", first.AccessToken != ""))
	if first.AccessToken == "" {
		return info, nil
	}

	accounts, err := s.client.AccountsGet(ctx, first.AccessToken)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	info.BankName = accounts.Item.InstitutionName
	for _, acc := range accounts.Accounts {
		info.AccountObjects = append(info.AccountObjects, toAccountObject(acc))
	}

	s.saveItem(ctx, first, info)

	return info, nil
}

// saveItem keeps the linked item when a repository is configured. Storage
// failures are logged; the user still gets their sign-up result.
func (s *Service) saveItem(ctx context.Context, item plaid.UserAccountItem, info *AccountSessionInfo) {
	if s.items == nil {
		return
	}

	itemID := item.ItemID
	if itemID == "" {
		log.Printf("Warning: linked item has no item_id, not saving it")
		return
	}

	_, err := s.items.Save(ctx, SaveItemParams{
		ItemID:          itemID,
		AccessToken:     item.AccessToken,
		InstitutionName: info.BankName,
		AccountCount:    len(info.AccountObjects),
	})
	if err != nil {
		log.Printf("Warning: failed to save linked item %s: %v", itemID, err)
	}
}

func toIdentity(src *plaid.Identity) *Identity {
	if src == nil {
		return nil
	}

	identity := &Identity{
		DateOfBirth: src.DateOfBirth,
		Email:       src.Email,
		PhoneNumber: src.PhoneNumber,
		SSNLast4:    src.SSNLast4,
	}
	if src.Name != nil {
		identity.Name = &Name{
			FirstName: src.Name.FirstName,
			LastName:  src.Name.LastName,
		}
	}
	if src.Address != nil {
		identity.Address = &Address{
			Street:     src.Address.Street,
			Street2:    src.Address.Street2,
			City:       src.Address.City,
			Region:     src.Address.Region,
			PostalCode: src.Address.PostalCode,
			Country:    src.Address.Country,
		}
	}
	return identity
}

func toAccountObject(acc plaid.Account) AccountObject {
	return AccountObject{
		AcctName:    acc.Name,
		Balance:     acc.Balances.Current,
		AcctType:    acc.Type,
		AcctSubtype: acc.Subtype,
		AcctMask:    acc.Mask,
	}
}
