package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"type",
			"name",
			"email",
			"subscription",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"buyer",
					"seller",
					"superAdmin",
				},
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"phone": bson.M{
				"bsonType":  "string",
				"maxLength": 16,
			},

			"company_name": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"company_vat_id": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},

			"payment_history": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"amount", "currency", "reference", "purpose", "paid_at"},
					"properties": bson.M{
						"amount":    bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
						"currency":  bson.M{"bsonType": "string", "minLength": 3, "maxLength": 3},
						"reference": bson.M{"bsonType": "string"},
						"purpose":   bson.M{"bsonType": "string", "enum": []string{"booking", "subscription"}},
						"paid_at":   bson.M{"bsonType": "date"},
					},
				},
			},

			"subscription": bson.M{
				"bsonType": "object",
				"required": []string{"status"},
				"properties": bson.M{
					"plan_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
					"status": bson.M{
						"bsonType": "string",
						"enum":     []string{"none", "active", "expired"},
					},
					"expires_at": bson.M{"bsonType": []string{"date", "null"}},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var SubscriptionPlanValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"price",
			"duration_days",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"discount_pct": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
				"maximum":  100,
			},

			"duration_days": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  3650,
			},

			"features": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "int",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
