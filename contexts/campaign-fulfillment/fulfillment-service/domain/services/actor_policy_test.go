package services

import (
	"errors"
	"testing"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
)

func TestAuthorizeBrandReview(t *testing.T) {
	campaign := entities.Campaign{CampaignID: "camp-1", BrandID: "brand-1"}

	allowed := []entities.Actor{
		{ActorID: "brand-1", Role: entities.ActorRoleBrand},
		{ActorID: "ops-1", Role: entities.ActorRoleOperations},
		entities.SystemActor(""),
	}
	for _, actor := range allowed {
		if err := AuthorizeBrandReview(actor, campaign); err != nil {
			t.Fatalf("expected %+v to be allowed, got %v", actor, err)
		}
	}

	denied := []entities.Actor{
		{ActorID: "brand-2", Role: entities.ActorRoleBrand},
		{ActorID: "brand-1", Role: entities.ActorRoleCreator},
		{ActorID: "", Role: entities.ActorRoleOperations},
		{ActorID: "brand-1", Role: entities.ActorRole("guest")},
	}
	for _, actor := range denied {
		if err := AuthorizeBrandReview(actor, campaign); !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
			t.Fatalf("expected %+v to be denied, got %v", actor, err)
		}
	}
}

func TestAuthorizeCreatorVariants(t *testing.T) {
	owner := entities.Actor{ActorID: "creator-1", Role: entities.ActorRoleCreator}
	ops := entities.Actor{ActorID: "ops-1", Role: entities.ActorRoleOperations}
	other := entities.Actor{ActorID: "creator-2", Role: entities.ActorRoleCreator}

	if err := AuthorizeCreator(owner, "creator-1"); err != nil {
		t.Fatalf("owner should be allowed: %v", err)
	}
	if err := AuthorizeCreator(ops, "creator-1"); err != nil {
		t.Fatalf("staff should be allowed: %v", err)
	}
	if err := AuthorizeCreator(other, "creator-1"); !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("other creator should be denied, got %v", err)
	}
	if err := AuthorizeCreatorOnly(ops, "creator-1"); !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("staff should be denied creator-only steps, got %v", err)
	}
	if err := AuthorizeStaff(owner); !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("creator should be denied staff steps, got %v", err)
	}
	if err := AuthorizeParticipant(entities.Actor{ActorID: "brand-1", Role: entities.ActorRoleBrand}, entities.Campaign{BrandID: "brand-1"}, "creator-1"); err != nil {
		t.Fatalf("owning brand should be a participant: %v", err)
	}
}
