package reservation

import (
	"strconv"
	"strings"
)

// Package reservation holds the core purchase pipeline: parsing loose CSV rows
// into typed reservation requests, rendering the Microsoft.Capacity API
// payloads, correlating calculated quotes, gating rows behind the two
// purchase flags, and executing the purchase batch.

// Column headers expected in the input file. The last two are only needed for
// purchase runs.
const (
	ColSKUName            = "SKU-name"
	ColRegion             = "azure region"
	ColResourceType       = "reservedResourceType"
	ColSubscription       = "subscription"
	ColTerm               = "term"
	ColBillingPlan        = "billingPlan"
	ColQuantity           = "quantity"
	ColDisplayName        = "displayName"
	ColAppliedScopes      = "appliedScopes"
	ColScopeType          = "appliedScopeType"
	ColInstanceFlex       = "InstanceFlexibility"
	ColRenew              = "renew"
	ColPurchaseTrigger    = "Purchase Trigger"
	ColPurchasedConfirmed = "Purchased Confirmed"
)

// Row is one input line keyed by column header. A key is present iff the
// column existed in the input file, which matters for the safety gate.
type Row map[string]string

// ScopeType is the appliedScopeType enumeration of the reservation API.
type ScopeType string

const (
	ScopeSingle          ScopeType = "Single"
	ScopeShared          ScopeType = "Shared"
	ScopeManagementGroup ScopeType = "ManagementGroup"
)

// ParseScopeType matches case-insensitively against the known scope types.
func ParseScopeType(s string) (ScopeType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return ScopeSingle, true
	case "shared":
		return ScopeShared, true
	case "managementgroup":
		return ScopeManagementGroup, true
	}
	return "", false
}

// ResourceType is the reservedResourceType enumeration of the reservation API.
type ResourceType string

const (
	ResourceVirtualMachines   ResourceType = "VirtualMachines"
	ResourceSQLDatabases      ResourceType = "SqlDatabases"
	ResourceSuseLinux         ResourceType = "SuseLinux"
	ResourceCosmosDB          ResourceType = "CosmosDb"
	ResourceRedHat            ResourceType = "RedHat"
	ResourceSQLDataWarehouse  ResourceType = "SqlDataWarehouse"
	ResourceVMwareCloudSimple ResourceType = "VMwareCloudSimple"
	ResourceDatabricks        ResourceType = "Databricks"
	ResourceAppService        ResourceType = "AppService"
	ResourceManagedDisk       ResourceType = "ManagedDisk"
	ResourceBlockBlob         ResourceType = "BlockBlob"
	ResourceRedisCache        ResourceType = "RedisCache"
	ResourceAzureDataExplorer ResourceType = "AzureDataExplorer"
	ResourceMySQL             ResourceType = "MySql"
	ResourceMariaDB           ResourceType = "MariaDb"
	ResourcePostgreSQL        ResourceType = "PostgreSql"
	ResourceDedicatedHost     ResourceType = "DedicatedHost"
	ResourceSapHana           ResourceType = "SapHana"
)

var resourceTypes = map[string]ResourceType{}

func init() {
	for _, rt := range []ResourceType{
		ResourceVirtualMachines, ResourceSQLDatabases, ResourceSuseLinux,
		ResourceCosmosDB, ResourceRedHat, ResourceSQLDataWarehouse,
		ResourceVMwareCloudSimple, ResourceDatabricks, ResourceAppService,
		ResourceManagedDisk, ResourceBlockBlob, ResourceRedisCache,
		ResourceAzureDataExplorer, ResourceMySQL, ResourceMariaDB,
		ResourcePostgreSQL, ResourceDedicatedHost, ResourceSapHana,
	} {
		resourceTypes[strings.ToLower(string(rt))] = rt
	}
}

// ParseResourceType matches case-insensitively against the known resource
// types and returns the canonical API spelling.
func ParseResourceType(s string) (ResourceType, bool) {
	rt, ok := resourceTypes[strings.ToLower(strings.TrimSpace(s))]
	return rt, ok
}

// RequestRecord is the validated form of one reservation row. It is built
// once by ParseRow and never re-inspected as raw row data downstream.
type RequestRecord struct {
	SKUName        string
	Region         string
	ResourceType   ResourceType
	SubscriptionID string
	Term           string
	BillingPlan    string
	Quantity       int
	DisplayName    string
	ScopeType      ScopeType

	// AppliedScope is set iff ScopeType is Single.
	AppliedScope string
	// InstanceFlexibility is set iff ResourceType is VirtualMachines.
	InstanceFlexibility string

	Renew bool
}

// requiredColumns must be present (with a non-blank value, except renew) in
// every input row.
var requiredColumns = []string{
	ColSKUName, ColRegion, ColResourceType, ColSubscription, ColTerm,
	ColBillingPlan, ColQuantity, ColDisplayName, ColScopeType, ColRenew,
}

// ParseRow validates one input row into a RequestRecord. rowNum is 1-based
// and used only for error and warning messages. Returned warnings flag
// supplied values that were discarded by the scope/resource rules; they are
// non-fatal.
func ParseRow(rowNum int, row Row) (*RequestRecord, []string, error) {
	for _, col := range requiredColumns {
		v, ok := row[col]
		if !ok || (strings.TrimSpace(v) == "" && col != ColRenew) {
			return nil, nil, &ValidationError{Row: rowNum, Column: col, Err: ErrMissingColumn}
		}
	}

	scopeType, ok := ParseScopeType(row[ColScopeType])
	if !ok {
		return nil, nil, &ValidationError{Row: rowNum, Column: ColScopeType, Value: row[ColScopeType], Err: ErrInvalidScopeType}
	}

	resourceType, ok := ParseResourceType(row[ColResourceType])
	if !ok {
		return nil, nil, &ValidationError{Row: rowNum, Column: ColResourceType, Value: row[ColResourceType], Err: ErrInvalidResourceType}
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(row[ColQuantity]))
	if err != nil || quantity <= 0 {
		return nil, nil, &ValidationError{Row: rowNum, Column: ColQuantity, Value: row[ColQuantity], Err: ErrInvalidQuantity}
	}

	rec := &RequestRecord{
		SKUName:        strings.TrimSpace(row[ColSKUName]),
		Region:         strings.TrimSpace(row[ColRegion]),
		ResourceType:   resourceType,
		SubscriptionID: strings.TrimSpace(row[ColSubscription]),
		Term:           strings.TrimSpace(row[ColTerm]),
		BillingPlan:    strings.TrimSpace(row[ColBillingPlan]),
		Quantity:       quantity,
		DisplayName:    strings.TrimSpace(row[ColDisplayName]),
		ScopeType:      scopeType,
		Renew:          strings.EqualFold(strings.TrimSpace(row[ColRenew]), "yes"),
	}

	var warnings []string

	scopes := strings.TrimSpace(row[ColAppliedScopes])
	if scopeType == ScopeSingle {
		if scopes == "" {
			return nil, nil, &ValidationError{Row: rowNum, Column: ColAppliedScopes, Err: ErrMissingRequiredField}
		}
		rec.AppliedScope = scopes
	} else if scopes != "" {
		warnings = append(warnings, warnDiscarded(rowNum, ColAppliedScopes, "appliedScopeType is "+string(scopeType)))
	}

	flex := strings.TrimSpace(row[ColInstanceFlex])
	if resourceType == ResourceVirtualMachines {
		if flex == "" {
			return nil, nil, &ValidationError{Row: rowNum, Column: ColInstanceFlex, Err: ErrMissingRequiredField}
		}
		rec.InstanceFlexibility = flex
	} else if flex != "" {
		warnings = append(warnings, warnDiscarded(rowNum, ColInstanceFlex, "reservedResourceType is "+string(resourceType)))
	}

	return rec, warnings, nil
}

func warnDiscarded(rowNum int, column, reason string) string {
	return "row " + strconv.Itoa(rowNum) + ": " + column + " ignored because " + reason
}
