package httpadapter

import (
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	httptransport "creatorflow/contexts/campaign-fulfillment/fulfillment-service/transport/http"
)

func mapApplication(item entities.Application) httptransport.ApplicationDTO {
	return httptransport.ApplicationDTO{
		ApplicationID:       item.ApplicationID,
		CampaignID:          item.CampaignID,
		CreatorID:           item.CreatorID,
		Status:              string(item.Status),
		RejectionReasonCode: item.RejectionReasonCode,
		RejectionNote:       item.RejectionNote,
		DecidedAt:           item.DecidedAt,
	}
}

func mapShipment(item entities.ShipmentRequest) httptransport.ShipmentDTO {
	return httptransport.ShipmentDTO{
		ShipmentRequestID: item.ShipmentRequestID,
		CampaignID:        item.CampaignID,
		CreatorID:         item.CreatorID,
		Status:            string(item.Status),
		AddressID:         item.AddressID,
		TrackingNumber:    item.TrackingNumber,
		Carrier:           item.Carrier,
		IssueReason:       item.IssueReason,
		IssueNote:         item.IssueNote,
		ShippedAt:         item.ShippedAt,
		DeliveredAt:       item.DeliveredAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

func mapTask(item entities.Task) httptransport.TaskDTO {
	return httptransport.TaskDTO{
		TaskID:          item.TaskID,
		ApplicationID:   item.ApplicationID,
		CampaignID:      item.CampaignID,
		CreatorID:       item.CreatorID,
		Status:          string(item.Status),
		RequiresProduct: item.RequiresProduct,
		PaymentAmount:   item.PaymentAmount,
		DueAt:           item.DueAt,
		DisputeReason:   item.DisputeReason,
		StartedAt:       item.StartedAt,
		SubmittedAt:     item.SubmittedAt,
		ApprovedAt:      item.ApprovedAt,
		PaidAt:          item.PaidAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func mapUpload(item entities.Upload) httptransport.UploadDTO {
	return httptransport.UploadDTO{
		UploadID:        item.UploadID,
		StorageRef:      item.StorageRef,
		FileName:        item.FileName,
		ContentType:     item.ContentType,
		SizeBytes:       item.SizeBytes,
		DeliverableType: item.DeliverableType,
		Status:          string(item.Status),
		CreatedAt:       item.CreatedAt,
	}
}

func mapRevision(item entities.RevisionRequest) httptransport.RevisionDTO {
	return httptransport.RevisionDTO{
		RevisionRequestID: item.RevisionRequestID,
		Tags:              nonNil(item.Tags),
		Note:              item.Note,
		Status:            string(item.Status),
		CreatedAt:         item.CreatedAt,
		ResolvedAt:        item.ResolvedAt,
	}
}

func mapPayment(item entities.Payment) httptransport.PaymentDTO {
	return httptransport.PaymentDTO{
		PaymentID:  item.PaymentID,
		TaskID:     item.TaskID,
		CreatorID:  item.CreatorID,
		CampaignID: item.CampaignID,
		Amount:     item.Amount,
		Status:     string(item.Status),
		InvoiceURL: item.InvoiceURL,
		BatchID:    item.BatchID,
		PaidAt:     item.PaidAt,
		CreatedAt:  item.CreatedAt,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
