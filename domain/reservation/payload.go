package reservation

// Request body shapes for the Microsoft.Capacity calculatePrice and
// reservationOrders endpoints. Both endpoints take the same shape; purchase
// additionally carries properties.renew. Struct marshalling keeps the field
// order fixed, so rendering the same record twice yields byte-identical JSON.

type SKU struct {
	Name string `json:"name"`
}

type ResourceProperties struct {
	InstanceFlexibility string `json:"instanceFlexibility"`
}

type Properties struct {
	ReservedResourceType ResourceType `json:"reservedResourceType"`
	BillingScopeID       string       `json:"billingScopeId"`
	Term                 string       `json:"term"`
	BillingPlan          string       `json:"billingPlan"`
	Quantity             int          `json:"quantity"`
	DisplayName          string       `json:"displayName"`

	// AppliedScopes is a one-element list for Single scope and null otherwise.
	AppliedScopes    []string  `json:"appliedScopes"`
	AppliedScopeType ScopeType `json:"appliedScopeType"`

	// ReservedResourceProperties only appears for VirtualMachines.
	ReservedResourceProperties *ResourceProperties `json:"reservedResourceProperties,omitempty"`

	// Renew only appears in purchase payloads.
	Renew *bool `json:"renew,omitempty"`
}

type Payload struct {
	SKU        SKU        `json:"sku"`
	Location   string     `json:"location"`
	Properties Properties `json:"properties"`
}

func (r *RequestRecord) payload() Payload {
	p := Payload{
		SKU:      SKU{Name: r.SKUName},
		Location: r.Region,
		Properties: Properties{
			ReservedResourceType: r.ResourceType,
			BillingScopeID:       "/subscriptions/" + r.SubscriptionID,
			Term:                 r.Term,
			BillingPlan:          r.BillingPlan,
			Quantity:             r.Quantity,
			DisplayName:          r.DisplayName,
			AppliedScopeType:     r.ScopeType,
		},
	}
	if r.ScopeType == ScopeSingle {
		p.Properties.AppliedScopes = []string{r.AppliedScope}
	}
	if r.ResourceType == ResourceVirtualMachines {
		p.Properties.ReservedResourceProperties = &ResourceProperties{InstanceFlexibility: r.InstanceFlexibility}
	}
	return p
}

// CalculatePayload renders the body for the calculatePrice endpoint.
func (r *RequestRecord) CalculatePayload() Payload {
	return r.payload()
}

// PurchasePayload renders the body for the reservationOrders PUT, which is
// the calculate shape plus the renew flag.
func (r *RequestRecord) PurchasePayload() Payload {
	p := r.payload()
	renew := r.Renew
	p.Properties.Renew = &renew
	return p
}
