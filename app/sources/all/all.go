// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package all blank-imports every built-in source package so their init()
// registration hooks run (the same side-effect-import idiom database/sql
// drivers use).
// cmd/helios-agent imports this package for its side effect alone; nothing
// in it is referenced directly.
package all

import (
	_ "github.com/helios-io/helios/app/sources/azuremonitor"
	_ "github.com/helios-io/helios/app/sources/cloudwatch"
	_ "github.com/helios-io/helios/app/sources/datadog"
	_ "github.com/helios-io/helios/app/sources/gcpmonitoring"
	_ "github.com/helios-io/helios/app/sources/prometheus"
	_ "github.com/helios-io/helios/app/sources/system"
)
