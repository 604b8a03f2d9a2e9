package services

import (
	"strings"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
)

// AuthorizeBrandReview lets the owning brand or staff decide on campaign work.
func AuthorizeBrandReview(actor entities.Actor, campaign entities.Campaign) error {
	if !actor.Valid() {
		return domainerrors.ErrUnauthorizedActor
	}
	if actor.IsStaff() {
		return nil
	}
	if actor.Role == entities.ActorRoleBrand && actor.ActorID == strings.TrimSpace(campaign.BrandID) {
		return nil
	}
	return domainerrors.ErrUnauthorizedActor
}

// AuthorizeCreator lets the creator who owns the work, or staff, act on it.
func AuthorizeCreator(actor entities.Actor, creatorID string) error {
	if !actor.Valid() {
		return domainerrors.ErrUnauthorizedActor
	}
	if actor.IsStaff() {
		return nil
	}
	if actor.Role == entities.ActorRoleCreator && actor.ActorID == strings.TrimSpace(creatorID) {
		return nil
	}
	return domainerrors.ErrUnauthorizedActor
}

// AuthorizeCreatorOnly is used for intake steps staff never perform.
func AuthorizeCreatorOnly(actor entities.Actor, creatorID string) error {
	if !actor.Valid() || actor.Role != entities.ActorRoleCreator {
		return domainerrors.ErrUnauthorizedActor
	}
	if actor.ActorID != strings.TrimSpace(creatorID) {
		return domainerrors.ErrUnauthorizedActor
	}
	return nil
}

func AuthorizeStaff(actor entities.Actor) error {
	if !actor.Valid() || !actor.IsStaff() {
		return domainerrors.ErrUnauthorizedActor
	}
	return nil
}

// AuthorizeParticipant admits anyone with a stake in the shipment.
func AuthorizeParticipant(actor entities.Actor, campaign entities.Campaign, creatorID string) error {
	if err := AuthorizeCreator(actor, creatorID); err == nil {
		return nil
	}
	return AuthorizeBrandReview(actor, campaign)
}
