package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vitta_logistica/internal/domain/entities"
	"vitta_logistica/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const (
	defaultBudgetsTableName = "budgets"
	budgetNumberIndex       = "budget_number-index"

	// numberGuardPrefix keys the uniqueness guard items that share the
	// budgets table with the budgets themselves.
	numberGuardPrefix = "budget_number#"
)

type supplierItem struct {
	ID            string `dynamodbav:"id"`
	Name          string `dynamodbav:"name"`
	CNPJ          string `dynamodbav:"cnpj"`
	ProposedValue string `dynamodbav:"proposed_value"`
	Category      string `dynamodbav:"category"`
	Active        bool   `dynamodbav:"active"`
}

type costsItem struct {
	KmPerDay        string `dynamodbav:"km_per_day"`
	DaysQuantity    string `dynamodbav:"days_quantity"`
	TotalKm         string `dynamodbav:"total_km"`
	FuelConsumption string `dynamodbav:"fuel_consumption"`
	FuelValue       string `dynamodbav:"fuel_value"`
	TotalFuel       string `dynamodbav:"total_fuel"`
	TotalFuelCost   string `dynamodbav:"total_fuel_cost"`
	ExtraHours      string `dynamodbav:"extra_hours"`
	Taxes           string `dynamodbav:"taxes"`
	Maintenance     string `dynamodbav:"maintenance"`
	Insurance       string `dynamodbav:"insurance"`
	Other           string `dynamodbav:"other"`
	TotalCost       string `dynamodbav:"total_cost"`
}

type variableCostsItem struct {
	ExcessKm         string `dynamodbav:"excess_km"`
	CostPerExcessKm  string `dynamodbav:"cost_per_excess_km"`
	EmployeeOvertime string `dynamodbav:"employee_overtime"`
	Tax2             string `dynamodbav:"tax2"`
	TotalCost3       string `dynamodbav:"total_cost3"`
}

type marginsItem struct {
	ProfitPercentage   string `dynamodbav:"profit_percentage"`
	DiscountPercentage string `dynamodbav:"discount_percentage"`
	ProfitAmount       string `dynamodbav:"profit_amount"`
	DiscountAmount     string `dynamodbav:"discount_amount"`
	FinalValue         string `dynamodbav:"final_value"`
}

type budgetItem struct {
	ID           string `dynamodbav:"id"`
	BudgetNumber string `dynamodbav:"budget_number"`

	RequestDate     string `dynamodbav:"request_date"`
	Client          string `dynamodbav:"client"`
	UF              string `dynamodbav:"uf"`
	City            string `dynamodbav:"city"`
	Route           string `dynamodbav:"route"`
	RouteID         string `dynamodbav:"route_id"`
	BillingType     string `dynamodbav:"billing_type"`
	VehicleType     string `dynamodbav:"vehicle_type"`
	Frequency       string `dynamodbav:"frequency"`
	ApproximateTime string `dynamodbav:"approximate_time"`
	FixedPrice      string `dynamodbav:"fixed_price"`

	Costs         costsItem          `dynamodbav:"costs"`
	VariableCosts *variableCostsItem `dynamodbav:"variable_costs,omitempty"`
	Margins       marginsItem        `dynamodbav:"margins"`
	Suppliers     []supplierItem     `dynamodbav:"suppliers"`

	Status         string `dynamodbav:"status"`
	SendDate       string `dynamodbav:"send_date,omitempty"`
	ApprovalDate   string `dynamodbav:"approval_date,omitempty"`
	ApprovedBy     string `dynamodbav:"approved_by,omitempty"`
	StartDate      string `dynamodbav:"start_date,omitempty"`
	DeletionDate   string `dynamodbav:"deletion_date,omitempty"`
	DasaValidation string `dynamodbav:"dasa_validation,omitempty"`
	BdgInclusion   bool   `dynamodbav:"bdg_inclusion"`

	CreatedBy string `dynamodbav:"created_by"`
	UpdatedBy string `dynamodbav:"updated_by"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`

	Version int64 `dynamodbav:"version"`
}

// BudgetDynamoRepository persists Budget entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: budget_number-index (PK: budget_number)
//
// Budget-number uniqueness is enforced with a guard item
// ("budget_number#<n>") written in the same transaction as the budget, so a
// duplicate create fails atomically instead of racing the GSI.

type BudgetDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IBudgetRepository = (*BudgetDynamoRepository)(nil)

func NewBudgetDynamoRepository(ddb *dynamodb.Client, tableName string) *BudgetDynamoRepository {
	if tableName == "" {
		tableName = defaultBudgetsTableName
	}
	return &BudgetDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *BudgetDynamoRepository) Create(ctx context.Context, b entities.Budget) (entities.Budget, error) {
	av, err := attributevalue.MarshalMap(toBudgetItem(b))
	if err != nil {
		return entities.Budget{}, err
	}

	guard := map[string]types.AttributeValue{
		"id":        &types.AttributeValueMemberS{Value: numberGuardPrefix + b.BudgetNumber},
		"budget_id": &types.AttributeValueMemberS{Value: b.ID},
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                aws.String(r.tableName),
					Item:                     av,
					ConditionExpression:      aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				},
			},
			{
				Put: &types.Put{
					TableName:                aws.String(r.tableName),
					Item:                     guard,
					ConditionExpression:      aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				},
			},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for _, reason := range tce.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return entities.Budget{}, interfaces.ErrDuplicateBudgetNumber
				}
			}
		}
		return entities.Budget{}, err
	}
	return b, nil
}

func (r *BudgetDynamoRepository) GetByID(ctx context.Context, id string) (entities.Budget, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Budget{}, err
	}
	if len(out.Item) == 0 {
		return entities.Budget{}, nil
	}

	var it budgetItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Budget{}, err
	}
	return fromBudgetItem(it), nil
}

func (r *BudgetDynamoRepository) GetByNumber(ctx context.Context, number string) (entities.Budget, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(budgetNumberIndex),
		KeyConditionExpression: aws.String("#bn = :bn"),
		ExpressionAttributeNames: map[string]string{
			"#bn": "budget_number",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":bn": &types.AttributeValueMemberS{Value: number},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Budget{}, err
	}
	if len(out.Items) == 0 {
		return entities.Budget{}, nil
	}

	var it budgetItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.Budget{}, err
	}
	return fromBudgetItem(it), nil
}

func (r *BudgetDynamoRepository) List(ctx context.Context, f entities.BudgetFilter) ([]entities.Budget, error) {
	expr, names, values := buildListFilter(f)

	budgets := make([]entities.Budget, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          aws.String(expr),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			var it budgetItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			budgets = append(budgets, fromBudgetItem(it))
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return budgets, nil
}

// buildListFilter translates the explicit filter struct into a DynamoDB
// filter expression. Guard items never match because they carry no status.
func buildListFilter(f entities.BudgetFilter) (string, map[string]string, map[string]types.AttributeValue) {
	conds := []string{"attribute_exists(#status)"}
	names := map[string]string{"#status": "status"}
	values := map[string]types.AttributeValue{}

	if f.Status != "" {
		conds = append(conds, "#status = :status")
		values[":status"] = &types.AttributeValueMemberS{Value: string(f.Status)}
	} else {
		// Deleted budgets stay out of active listings unless asked for.
		conds = append(conds, "#status <> :excluido")
		values[":excluido"] = &types.AttributeValueMemberS{Value: string(entities.BudgetStatusExcluido)}
	}
	if f.Client != "" {
		conds = append(conds, "contains(#client, :client)")
		names["#client"] = "client"
		values[":client"] = &types.AttributeValueMemberS{Value: f.Client}
	}
	if f.UF != "" {
		conds = append(conds, "#uf = :uf")
		names["#uf"] = "uf"
		values[":uf"] = &types.AttributeValueMemberS{Value: f.UF}
	}
	if f.DasaValidation != "" {
		conds = append(conds, "#dasa = :dasa")
		names["#dasa"] = "dasa_validation"
		values[":dasa"] = &types.AttributeValueMemberS{Value: f.DasaValidation}
	}
	if f.BdgInclusion != nil {
		conds = append(conds, "#bdg = :bdg")
		names["#bdg"] = "bdg_inclusion"
		values[":bdg"] = &types.AttributeValueMemberBOOL{Value: *f.BdgInclusion}
	}
	// Timestamps are stored fixed-width (storedTimeLayout), so their
	// lexicographic order is chronological and BETWEEN works on dates.
	if f.RequestDateFrom != nil && f.RequestDateTo != nil {
		conds = append(conds, "#rd BETWEEN :from AND :to")
		names["#rd"] = "request_date"
		values[":from"] = &types.AttributeValueMemberS{Value: formatTime(*f.RequestDateFrom)}
		values[":to"] = &types.AttributeValueMemberS{Value: formatTime(*f.RequestDateTo)}
	} else if f.RequestDateFrom != nil {
		conds = append(conds, "#rd >= :from")
		names["#rd"] = "request_date"
		values[":from"] = &types.AttributeValueMemberS{Value: formatTime(*f.RequestDateFrom)}
	} else if f.RequestDateTo != nil {
		conds = append(conds, "#rd <= :to")
		names["#rd"] = "request_date"
		values[":to"] = &types.AttributeValueMemberS{Value: formatTime(*f.RequestDateTo)}
	}

	return strings.Join(conds, " AND "), names, values
}

func (r *BudgetDynamoRepository) Update(ctx context.Context, b entities.Budget, expectedVersion int64) (entities.Budget, error) {
	b.Version = expectedVersion + 1
	av, err := attributevalue.MarshalMap(toBudgetItem(b))
	if err != nil {
		return entities.Budget{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id) AND #version = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#id":      "id",
			"#version": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			// Distinguish a missing item from a stale write.
			current, getErr := r.GetByID(ctx, b.ID)
			if getErr != nil {
				return entities.Budget{}, getErr
			}
			if current.ID == "" {
				return entities.Budget{}, nil
			}
			return entities.Budget{}, interfaces.ErrVersionConflict
		}
		return entities.Budget{}, err
	}
	return b, nil
}

func toBudgetItem(b entities.Budget) budgetItem {
	it := budgetItem{
		ID:              b.ID,
		BudgetNumber:    b.BudgetNumber,
		RequestDate:     formatTime(b.RequestDate),
		Client:          b.Client,
		UF:              b.UF,
		City:            b.City,
		Route:           b.Route,
		RouteID:         b.RouteID,
		BillingType:     string(b.BillingType),
		VehicleType:     b.VehicleType,
		Frequency:       b.Frequency,
		ApproximateTime: b.ApproximateTime,
		FixedPrice:      b.FixedPrice.String(),
		Costs: costsItem{
			KmPerDay:        b.Costs.KmPerDay.String(),
			DaysQuantity:    b.Costs.DaysQuantity.String(),
			TotalKm:         b.Costs.TotalKm.String(),
			FuelConsumption: b.Costs.FuelConsumption.String(),
			FuelValue:       b.Costs.FuelValue.String(),
			TotalFuel:       b.Costs.TotalFuel.String(),
			TotalFuelCost:   b.Costs.TotalFuelCost.String(),
			ExtraHours:      b.Costs.ExtraHours.String(),
			Taxes:           b.Costs.Taxes.String(),
			Maintenance:     b.Costs.Maintenance.String(),
			Insurance:       b.Costs.Insurance.String(),
			Other:           b.Costs.Other.String(),
			TotalCost:       b.Costs.TotalCost.String(),
		},
		Margins: marginsItem{
			ProfitPercentage:   b.Margins.ProfitPercentage.String(),
			DiscountPercentage: b.Margins.DiscountPercentage.String(),
			ProfitAmount:       b.Margins.ProfitAmount.String(),
			DiscountAmount:     b.Margins.DiscountAmount.String(),
			FinalValue:         b.Margins.FinalValue.String(),
		},
		Status:         string(b.Status),
		SendDate:       formatTimePtr(b.SendDate),
		ApprovalDate:   formatTimePtr(b.ApprovalDate),
		ApprovedBy:     b.ApprovedBy,
		StartDate:      formatTimePtr(b.StartDate),
		DeletionDate:   formatTimePtr(b.DeletionDate),
		DasaValidation: b.DasaValidation,
		BdgInclusion:   b.BdgInclusion,
		CreatedBy:      b.CreatedBy,
		UpdatedBy:      b.UpdatedBy,
		CreatedAt:      formatTime(b.CreatedAt),
		UpdatedAt:      formatTime(b.UpdatedAt),
		Version:        b.Version,
	}

	if b.VariableCosts != nil {
		it.VariableCosts = &variableCostsItem{
			ExcessKm:         b.VariableCosts.ExcessKm.String(),
			CostPerExcessKm:  b.VariableCosts.CostPerExcessKm.String(),
			EmployeeOvertime: b.VariableCosts.EmployeeOvertime.String(),
			Tax2:             b.VariableCosts.Tax2.String(),
			TotalCost3:       b.VariableCosts.TotalCost3.String(),
		}
	}

	it.Suppliers = make([]supplierItem, 0, len(b.Suppliers))
	for _, s := range b.Suppliers {
		it.Suppliers = append(it.Suppliers, supplierItem{
			ID:            s.ID,
			Name:          s.Name,
			CNPJ:          s.CNPJ,
			ProposedValue: s.ProposedValue.String(),
			Category:      string(s.Category),
			Active:        s.Active,
		})
	}
	return it
}

func fromBudgetItem(it budgetItem) entities.Budget {
	b := entities.Budget{
		ID:              it.ID,
		BudgetNumber:    it.BudgetNumber,
		RequestDate:     parseTime(it.RequestDate),
		Client:          it.Client,
		UF:              it.UF,
		City:            it.City,
		Route:           it.Route,
		RouteID:         it.RouteID,
		BillingType:     entities.BillingType(it.BillingType),
		VehicleType:     it.VehicleType,
		Frequency:       it.Frequency,
		ApproximateTime: it.ApproximateTime,
		FixedPrice:      parseDecimal(it.FixedPrice),
		Costs: entities.CostBreakdown{
			KmPerDay:        parseDecimal(it.Costs.KmPerDay),
			DaysQuantity:    parseDecimal(it.Costs.DaysQuantity),
			TotalKm:         parseDecimal(it.Costs.TotalKm),
			FuelConsumption: parseDecimal(it.Costs.FuelConsumption),
			FuelValue:       parseDecimal(it.Costs.FuelValue),
			TotalFuel:       parseDecimal(it.Costs.TotalFuel),
			TotalFuelCost:   parseDecimal(it.Costs.TotalFuelCost),
			ExtraHours:      parseDecimal(it.Costs.ExtraHours),
			Taxes:           parseDecimal(it.Costs.Taxes),
			Maintenance:     parseDecimal(it.Costs.Maintenance),
			Insurance:       parseDecimal(it.Costs.Insurance),
			Other:           parseDecimal(it.Costs.Other),
			TotalCost:       parseDecimal(it.Costs.TotalCost),
		},
		Margins: entities.Margins{
			ProfitPercentage:   parseDecimal(it.Margins.ProfitPercentage),
			DiscountPercentage: parseDecimal(it.Margins.DiscountPercentage),
			ProfitAmount:       parseDecimal(it.Margins.ProfitAmount),
			DiscountAmount:     parseDecimal(it.Margins.DiscountAmount),
			FinalValue:         parseDecimal(it.Margins.FinalValue),
		},
		Status:         entities.BudgetStatus(it.Status),
		SendDate:       parseTimePtr(it.SendDate),
		ApprovalDate:   parseTimePtr(it.ApprovalDate),
		ApprovedBy:     it.ApprovedBy,
		StartDate:      parseTimePtr(it.StartDate),
		DeletionDate:   parseTimePtr(it.DeletionDate),
		DasaValidation: it.DasaValidation,
		BdgInclusion:   it.BdgInclusion,
		CreatedBy:      it.CreatedBy,
		UpdatedBy:      it.UpdatedBy,
		CreatedAt:      parseTime(it.CreatedAt),
		UpdatedAt:      parseTime(it.UpdatedAt),
		Version:        it.Version,
	}

	if it.VariableCosts != nil {
		b.VariableCosts = &entities.VariableCosts{
			ExcessKm:         parseDecimal(it.VariableCosts.ExcessKm),
			CostPerExcessKm:  parseDecimal(it.VariableCosts.CostPerExcessKm),
			EmployeeOvertime: parseDecimal(it.VariableCosts.EmployeeOvertime),
			Tax2:             parseDecimal(it.VariableCosts.Tax2),
			TotalCost3:       parseDecimal(it.VariableCosts.TotalCost3),
		}
	}

	b.Suppliers = make([]entities.Supplier, 0, len(it.Suppliers))
	for _, s := range it.Suppliers {
		b.Suppliers = append(b.Suppliers, entities.Supplier{
			ID:            s.ID,
			Name:          s.Name,
			CNPJ:          s.CNPJ,
			ProposedValue: parseDecimal(s.ProposedValue),
			Category:      entities.SupplierCategory(s.Category),
			Active:        s.Active,
		})
	}
	return b
}

// storedTimeLayout is RFC3339 with a fixed nanosecond width. RFC3339Nano
// trims trailing zeros, which breaks the lexicographic ordering the date
// range filters rely on ("...00.5Z" would sort before "...00Z").
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedTimeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

func parseTimePtr(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil
	}
	return &t
}

func parseDecimal(v string) decimal.Decimal {
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// guardItemID is exposed for tests that assert on the uniqueness guard key.
func guardItemID(number string) string {
	return fmt.Sprintf("%s%s", numberGuardPrefix, number)
}
